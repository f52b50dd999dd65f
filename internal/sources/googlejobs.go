package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/types"
)

const serpAPIBaseURL = "https://serpapi.com"

// GoogleJobs fetches listings from the SerpApi google_jobs engine.
type GoogleJobs struct {
	BaseURL string
	APIKey  string
	MaxJobs int
	client  *http.Client
	logger  zerolog.Logger
}

// NewGoogleJobs constructs a GoogleJobs adapter.
func NewGoogleJobs(apiKey string, maxJobs int, logger zerolog.Logger) *GoogleJobs {
	if maxJobs <= 0 {
		maxJobs = 20
	}
	return &GoogleJobs{
		BaseURL: serpAPIBaseURL,
		APIKey:  apiKey,
		MaxJobs: maxJobs,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger.With().Str("source", string(types.SourceGoogleJobs)).Logger(),
	}
}

// Source identifies the provider.
func (g *GoogleJobs) Source() types.Source {
	return types.SourceGoogleJobs
}

// serpResponse mirrors the relevant part of the SerpApi JSON response.
type serpResponse struct {
	Error       string    `json:"error"`
	JobsResults []serpJob `json:"jobs_results"`
}

type serpJob struct {
	Title        string `json:"title"`
	CompanyName  string `json:"company_name"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	ShareLink    string `json:"share_link"`
	ApplyOptions []struct {
		Link string `json:"link"`
	} `json:"apply_options"`
	DetectedExtensions struct {
		PostedAt     string `json:"posted_at"`
		Salary       string `json:"salary"`
		WorkFromHome bool   `json:"work_from_home"`
	} `json:"detected_extensions"`
}

// Fetch queries SerpApi and converts the results to raw records.
func (g *GoogleJobs) Fetch(ctx context.Context, criteria types.SearchCriteria) ([]types.RawRecord, error) {
	if g.APIKey == "" {
		return nil, &FetchError{Source: g.Source(), Message: "SERPAPI_API_KEY not configured"}
	}

	params := url.Values{}
	params.Set("engine", "google_jobs")
	params.Set("q", criteria.Position)
	params.Set("location", criteria.Location)
	params.Set("hl", "en")
	params.Set("api_key", g.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Source: g.Source(), Message: "failed to create request", Cause: err}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, wrapErr(g.Source(), "search request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: g.Source(), Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	var apiResp serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &FetchError{Source: g.Source(), Message: "failed to decode response", Cause: err}
	}
	if apiResp.Error != "" {
		return nil, &FetchError{Source: g.Source(), Message: apiResp.Error}
	}

	jobs := apiResp.JobsResults
	if len(jobs) > g.MaxJobs {
		jobs = jobs[:g.MaxJobs]
	}

	records := make([]types.RawRecord, 0, len(jobs))
	for _, job := range jobs {
		applyLink := job.ShareLink
		if len(job.ApplyOptions) > 0 && job.ApplyOptions[0].Link != "" {
			applyLink = job.ApplyOptions[0].Link
		}

		nature := detectJobNature(job.Description)
		if job.DetectedExtensions.WorkFromHome {
			nature = "remote"
		}

		records = append(records, types.RawRecord{
			Source: g.Source(),
			Fields: map[string]string{
				"title":        job.Title,
				"company_name": job.CompanyName,
				"location":     job.Location,
				"description":  job.Description,
				"apply_link":   applyLink,
				"posted_at":    job.DetectedExtensions.PostedAt,
				"salary":       job.DetectedExtensions.Salary,
				"job_nature":   nature,
				"experience":   experiencePattern.FindString(job.Description),
			},
		})
	}

	g.logger.Debug().Int("records", len(records)).Msg("fetch complete")
	return records, nil
}
