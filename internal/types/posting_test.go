package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveID_Deterministic(t *testing.T) {
	a := DeriveID("Backend Engineer", "Acme Corp", "Berlin")
	b := DeriveID("Backend Engineer", "Acme Corp", "Berlin")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestDeriveID_NormalizesCaseAndWhitespace(t *testing.T) {
	a := DeriveID("Backend  Engineer", "ACME Corp", "berlin")
	b := DeriveID("backend engineer", "acme corp", "Berlin")
	assert.Equal(t, a, b)
}

func TestDeriveID_DifferentJobsDiffer(t *testing.T) {
	a := DeriveID("Backend Engineer", "Acme", "Berlin")
	b := DeriveID("Frontend Engineer", "Acme", "Berlin")
	assert.NotEqual(t, a, b)
}

func TestSortScored_ByScoreDescending(t *testing.T) {
	postings := []ScoredPosting{
		{Posting: Posting{ID: "a"}, RelevanceScore: 0.2},
		{Posting: Posting{ID: "b"}, RelevanceScore: 0.9},
		{Posting: Posting{ID: "c"}, RelevanceScore: 0.5},
	}

	SortScored(postings)

	assert.Equal(t, "b", postings[0].ID)
	assert.Equal(t, "c", postings[1].ID)
	assert.Equal(t, "a", postings[2].ID)
}

func TestSortScored_TieBreaksByPostedAtThenID(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	postings := []ScoredPosting{
		{Posting: Posting{ID: "z"}, RelevanceScore: 0.5},
		{Posting: Posting{ID: "a"}, RelevanceScore: 0.5},
		{Posting: Posting{ID: "m", PostedAt: &older}, RelevanceScore: 0.5},
		{Posting: Posting{ID: "n", PostedAt: &newer}, RelevanceScore: 0.5},
	}

	SortScored(postings)

	// Dated postings first (newest first), then undated by id ascending.
	assert.Equal(t, "n", postings[0].ID)
	assert.Equal(t, "m", postings[1].ID)
	assert.Equal(t, "a", postings[2].ID)
	assert.Equal(t, "z", postings[3].ID)
}

func TestSortScored_Idempotent(t *testing.T) {
	when := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	postings := []ScoredPosting{
		{Posting: Posting{ID: "b", PostedAt: &when}, RelevanceScore: 0.4},
		{Posting: Posting{ID: "a"}, RelevanceScore: 0.4},
		{Posting: Posting{ID: "c"}, RelevanceScore: 0.8},
	}

	SortScored(postings)
	first := make([]string, len(postings))
	for i, p := range postings {
		first[i] = p.ID
	}

	SortScored(postings)
	for i, p := range postings {
		assert.Equal(t, first[i], p.ID)
	}
}

func TestSearchCriteria_Terms(t *testing.T) {
	c := SearchCriteria{
		Position: "Backend Engineer",
		Skills:   []string{"Go", "backend", "distributed systems"},
	}

	terms := c.Terms()

	assert.Equal(t, []string{"backend", "engineer", "go", "distributed", "systems"}, terms)
}

func TestSearchCriteria_EffectiveLimit(t *testing.T) {
	assert.Equal(t, DefaultResultLimit, SearchCriteria{}.EffectiveLimit())
	assert.Equal(t, 5, SearchCriteria{Limit: 5}.EffectiveLimit())
}

func TestSearchCriteria_ExclusionTerms(t *testing.T) {
	c := SearchCriteria{Exclude: []string{" Unpaid ", "", "INTERN"}}
	assert.Equal(t, []string{"unpaid", "intern"}, c.ExclusionTerms())
}
