package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-finder/internal/types"
)

const serpJSON = `{
	"jobs_results": [
		{
			"title": "Backend Engineer",
			"company_name": "Acme Corp",
			"location": "Berlin, Germany",
			"description": "Build Go services. 5+ years experience.",
			"share_link": "https://example.com/share/1",
			"apply_options": [{"link": "https://example.com/apply/1"}],
			"detected_extensions": {"posted_at": "3 days ago", "work_from_home": true}
		},
		{
			"title": "Data Engineer",
			"company_name": "Beta GmbH",
			"location": "Munich, Germany",
			"description": "Pipelines.",
			"share_link": "https://example.com/share/2"
		}
	]
}`

func TestGoogleJobs_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_jobs", r.URL.Query().Get("engine"))
		assert.Equal(t, "backend engineer", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(serpJSON))
	}))
	defer srv.Close()

	adapter := NewGoogleJobs("test-key", 20, zerolog.Nop())
	adapter.BaseURL = srv.URL

	records, err := adapter.Fetch(context.Background(), types.SearchCriteria{
		Position: "backend engineer",
		Location: "Germany",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, types.SourceGoogleJobs, first.Source)
	assert.Equal(t, "Backend Engineer", first.Fields["title"])
	assert.Equal(t, "Acme Corp", first.Fields["company_name"])
	assert.Equal(t, "https://example.com/apply/1", first.Fields["apply_link"])
	assert.Equal(t, "3 days ago", first.Fields["posted_at"])
	assert.Equal(t, "remote", first.Fields["job_nature"])
	assert.Equal(t, "5+ years", first.Fields["experience"])

	// Second job has no apply_options, falls back to share link.
	assert.Equal(t, "https://example.com/share/2", records[1].Fields["apply_link"])
}

func TestGoogleJobs_FetchMaxJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(serpJSON))
	}))
	defer srv.Close()

	adapter := NewGoogleJobs("test-key", 1, zerolog.Nop())
	adapter.BaseURL = srv.URL

	records, err := adapter.Fetch(context.Background(), types.SearchCriteria{Position: "engineer"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestGoogleJobs_FetchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Invalid API key"}`))
	}))
	defer srv.Close()

	adapter := NewGoogleJobs("bad-key", 20, zerolog.Nop())
	adapter.BaseURL = srv.URL

	_, err := adapter.Fetch(context.Background(), types.SearchCriteria{Position: "engineer"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestGoogleJobs_FetchMissingKey(t *testing.T) {
	adapter := NewGoogleJobs("", 20, zerolog.Nop())

	_, err := adapter.Fetch(context.Background(), types.SearchCriteria{Position: "engineer"})
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Message, "SERPAPI_API_KEY")
}
