package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/types"
)

const (
	apifyBaseURL = "https://api.apify.com"
	// indeedActor is the Apify actor that scrapes Indeed listings.
	indeedActor = "misceres~indeed-scraper"
)

// Indeed fetches listings from Indeed via the Apify actor API, using the
// synchronous run endpoint that returns dataset items directly.
type Indeed struct {
	BaseURL string
	Token   string
	Country string
	MaxJobs int
	client  *http.Client
	logger  zerolog.Logger
}

// NewIndeed constructs an Indeed adapter. Actor runs are slow, so the HTTP
// timeout is generous; the per-source context deadline still applies.
func NewIndeed(token, country string, maxJobs int, logger zerolog.Logger) *Indeed {
	if maxJobs <= 0 {
		maxJobs = 10
	}
	if country == "" {
		country = "US"
	}
	return &Indeed{
		BaseURL: apifyBaseURL,
		Token:   token,
		Country: country,
		MaxJobs: maxJobs,
		client:  &http.Client{Timeout: 90 * time.Second},
		logger:  logger.With().Str("source", string(types.SourceIndeed)).Logger(),
	}
}

// Source identifies the provider.
func (i *Indeed) Source() types.Source {
	return types.SourceIndeed
}

// apifyItem mirrors one dataset item from the Indeed scraper actor.
type apifyItem struct {
	PositionName      string   `json:"positionName"`
	Company           string   `json:"company"`
	Location          string   `json:"location"`
	Description       string   `json:"description"`
	URL               string   `json:"url"`
	ExternalApplyLink string   `json:"externalApplyLink"`
	Salary            string   `json:"salary"`
	JobType           []string `json:"jobType"`
	PostingDateParsed string   `json:"postingDateParsed"`
}

// Fetch runs the actor synchronously and converts its dataset items.
func (i *Indeed) Fetch(ctx context.Context, criteria types.SearchCriteria) ([]types.RawRecord, error) {
	if i.Token == "" {
		return nil, &FetchError{Source: i.Source(), Message: "APIFY_API_TOKEN not configured"}
	}

	input := map[string]any{
		"position": criteria.Position,
		"location": criteria.Location,
		"country":  i.Country,
		"maxItems": i.MaxJobs,
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, &FetchError{Source: i.Source(), Message: "failed to encode actor input", Cause: err}
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		i.BaseURL, indeedActor, url.QueryEscape(i.Token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &FetchError{Source: i.Source(), Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, wrapErr(i.Source(), "actor run failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &FetchError{Source: i.Source(), Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	var items []apifyItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, &FetchError{Source: i.Source(), Message: "failed to decode dataset items", Cause: err}
	}

	records := make([]types.RawRecord, 0, len(items))
	for _, item := range items {
		applyLink := item.ExternalApplyLink
		if applyLink == "" {
			applyLink = item.URL
		}

		nature := ""
		for _, jt := range item.JobType {
			nature = detectJobNature(jt)
			if nature != "" {
				break
			}
		}
		if nature == "" {
			nature = detectJobNature(item.Description)
		}

		records = append(records, types.RawRecord{
			Source: i.Source(),
			Fields: map[string]string{
				"positionName":      item.PositionName,
				"company":           item.Company,
				"location":          item.Location,
				"description":       item.Description,
				"url":               applyLink,
				"salary":            item.Salary,
				"job_nature":        nature,
				"experience":        experiencePattern.FindString(item.Description),
				"postingDateParsed": item.PostingDateParsed,
			},
		})
	}

	i.logger.Debug().Int("records", len(records)).Msg("fetch complete")
	return records, nil
}
