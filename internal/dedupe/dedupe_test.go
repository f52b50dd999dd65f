package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-finder/internal/types"
)

func posting(id string, source types.Source) types.Posting {
	return types.Posting{
		ID:      id,
		Title:   "Backend Engineer",
		Company: "Acme",
		Source:  source,
	}
}

func TestPostings_RemovesDuplicates(t *testing.T) {
	input := []types.Posting{
		posting("a", types.SourceLinkedIn),
		posting("b", types.SourceLinkedIn),
		posting("a", types.SourceIndeed),
		posting("c", types.SourceGoogleJobs),
		posting("b", types.SourceGoogleJobs),
	}

	result := Postings(input)

	require.Len(t, result, 3)
	assert.Equal(t, "a", result[0].ID)
	assert.Equal(t, "b", result[1].ID)
	assert.Equal(t, "c", result[2].ID)
}

func TestPostings_FirstSeenOrderStable(t *testing.T) {
	input := []types.Posting{
		posting("z", types.SourceLinkedIn),
		posting("a", types.SourceIndeed),
		posting("z", types.SourceGoogleJobs),
	}

	result := Postings(input)

	require.Len(t, result, 2)
	// "z" stays first despite the later duplicate.
	assert.Equal(t, "z", result[0].ID)
	assert.Equal(t, "a", result[1].ID)
}

func TestPostings_MergePrefersPresentPostedAt(t *testing.T) {
	when := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	first := posting("a", types.SourceLinkedIn)
	first.Description = "a much longer description from linkedin"

	dupe := posting("a", types.SourceIndeed)
	dupe.PostedAt = &when
	dupe.Description = "short"

	result := Postings([]types.Posting{first, dupe})

	require.Len(t, result, 1)
	// The dated record wins even with a shorter description.
	require.NotNil(t, result[0].PostedAt)
	assert.Equal(t, types.SourceIndeed, result[0].Source)
	assert.Equal(t, "short", result[0].Description)
}

func TestPostings_MergePrefersLongerDescription(t *testing.T) {
	first := posting("a", types.SourceLinkedIn)
	first.Description = "short"

	dupe := posting("a", types.SourceGoogleJobs)
	dupe.Description = "a considerably longer description with details"

	result := Postings([]types.Posting{first, dupe})

	require.Len(t, result, 1)
	assert.Equal(t, dupe.Description, result[0].Description)
	assert.Equal(t, types.SourceGoogleJobs, result[0].Source)
}

func TestPostings_TieKeepsFirstSeen(t *testing.T) {
	first := posting("a", types.SourceLinkedIn)
	first.Description = "same"
	dupe := posting("a", types.SourceIndeed)
	dupe.Description = "same"

	result := Postings([]types.Posting{first, dupe})

	require.Len(t, result, 1)
	assert.Equal(t, types.SourceLinkedIn, result[0].Source)
}

func TestPostings_Deterministic(t *testing.T) {
	input := []types.Posting{
		posting("a", types.SourceLinkedIn),
		posting("b", types.SourceIndeed),
		posting("a", types.SourceGoogleJobs),
	}

	first := Postings(input)
	second := Postings(input)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i])
	}
}

func TestPostings_Empty(t *testing.T) {
	assert.Empty(t, Postings(nil))
}
