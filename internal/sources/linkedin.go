package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/fetch"
	"github.com/jonathan/job-finder/internal/types"
)

const linkedInBaseURL = "https://www.linkedin.com"

var experiencePattern = regexp.MustCompile(`\d+\s*\+?\s*years?`)

// LinkedIn scrapes the jobs-guest endpoints: a search page listing job ids,
// then one posting page per id. No authentication required.
type LinkedIn struct {
	BaseURL    string
	MaxJobs    int
	UseBrowser bool // render posting pages with chromedp when HTML comes back empty
	opts       *fetch.Options
	logger     zerolog.Logger
}

// NewLinkedIn constructs a LinkedIn adapter.
func NewLinkedIn(maxJobs int, useBrowser bool, logger zerolog.Logger) *LinkedIn {
	if maxJobs <= 0 {
		maxJobs = 20
	}
	return &LinkedIn{
		BaseURL:    linkedInBaseURL,
		MaxJobs:    maxJobs,
		UseBrowser: useBrowser,
		opts:       fetch.DefaultOptions(),
		logger:     logger.With().Str("source", string(types.SourceLinkedIn)).Logger(),
	}
}

// Source identifies the provider.
func (l *LinkedIn) Source() types.Source {
	return types.SourceLinkedIn
}

// Fetch retrieves up to MaxJobs postings for the criteria.
func (l *LinkedIn) Fetch(ctx context.Context, criteria types.SearchCriteria) ([]types.RawRecord, error) {
	ids, err := l.jobIDs(ctx, criteria)
	if err != nil {
		return nil, err
	}

	var records []types.RawRecord
	for _, id := range ids {
		if ctx.Err() != nil {
			return records, &TimeoutError{Source: l.Source(), Cause: ctx.Err()}
		}
		record, err := l.jobDetails(ctx, id)
		if err != nil {
			// A single broken posting page is not worth failing the source.
			l.logger.Warn().Str("job_id", id).Err(err).Msg("skipping posting")
			continue
		}
		records = append(records, record)
	}

	l.logger.Debug().Int("records", len(records)).Msg("fetch complete")
	return records, nil
}

// jobIDs scrapes the guest search page for posting ids.
func (l *LinkedIn) jobIDs(ctx context.Context, criteria types.SearchCriteria) ([]string, error) {
	listURL := fmt.Sprintf("%s/jobs-guest/jobs/api/seeMoreJobPostings/search?keywords=%s&location=%s&start=0",
		l.BaseURL, url.QueryEscape(criteria.Position), url.QueryEscape(criteria.Location))

	result, err := fetch.URL(ctx, listURL, l.opts)
	if err != nil {
		return nil, l.wrap("job search request failed", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.Body))
	if err != nil {
		return nil, &FetchError{Source: l.Source(), Message: "failed to parse search results", Cause: err}
	}

	var ids []string
	doc.Find("li").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		urn, ok := item.Find("div.base-card").Attr("data-entity-urn")
		if !ok {
			return true
		}
		parts := strings.Split(urn, ":")
		if id := parts[len(parts)-1]; id != "" {
			ids = append(ids, id)
		}
		return len(ids) < l.MaxJobs
	})

	return ids, nil
}

// jobDetails scrapes one guest posting page into a raw record.
func (l *LinkedIn) jobDetails(ctx context.Context, jobID string) (types.RawRecord, error) {
	jobURL := fmt.Sprintf("%s/jobs-guest/jobs/api/jobPosting/%s", l.BaseURL, jobID)

	result, err := fetch.URL(ctx, jobURL, l.opts)
	if err != nil {
		return types.RawRecord{}, err
	}
	body := result.Body

	description, _ := fetch.ExtractText(body, fetch.DescriptionSelectors()...)
	if l.UseBrowser && fetch.ShouldUseBrowser(description) {
		if rendered, berr := fetch.WithBrowser(ctx, jobURL, 30*time.Second); berr == nil {
			body = rendered
			description, _ = fetch.ExtractText(body, fetch.DescriptionSelectors()...)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return types.RawRecord{}, &FetchError{Source: l.Source(), Message: "failed to parse posting", Cause: err}
	}

	fields := map[string]string{
		"job_title":   selectionText(doc, "h2.top-card-layout__title"),
		"company":     selectionText(doc, "a.topcard__org-name-link"),
		"location":    selectionText(doc, "span.topcard__flavor--bullet"),
		"description": description,
		"apply_link":  jobURL,
		"experience":  experiencePattern.FindString(description),
		"job_nature":  detectJobNature(description),
	}
	if posted, ok := doc.Find("time.posted-time-ago__text").Attr("datetime"); ok {
		fields["posted_at"] = posted
	}

	return types.RawRecord{Source: l.Source(), Fields: fields}, nil
}

func (l *LinkedIn) wrap(message string, err error) error {
	return wrapErr(l.Source(), message, err)
}

func selectionText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

// detectJobNature classifies a description as remote, onsite or hybrid.
func detectJobNature(description string) string {
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "remote"):
		return "remote"
	case strings.Contains(lower, "onsite") || strings.Contains(lower, "on-site"):
		return "onsite"
	case strings.Contains(lower, "hybrid"):
		return "hybrid"
	default:
		return ""
	}
}
