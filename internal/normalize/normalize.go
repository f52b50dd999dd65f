// Package normalize converts source-specific raw records into canonical
// Postings. Adding a source means adding one entry to the mapping table, not
// new control flow in the pipeline.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/job-finder/internal/types"
)

// MaxDescriptionLength bounds posting descriptions to cap memory use and the
// size of AI scoring prompts.
const MaxDescriptionLength = 2000

// MalformedRecordError indicates a raw record lacked required fields. It is
// dropped and counted, never propagated as a request-level error.
type MalformedRecordError struct {
	Source types.Source
	Field  string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: missing %s", e.Source, e.Field)
}

// fieldMap names the source-native keys for each canonical Posting field.
type fieldMap struct {
	title       string
	company     string
	location    string
	description string
	url         string
	postedAt    string
}

// sourceFields is the per-source mapping table.
var sourceFields = map[types.Source]fieldMap{
	types.SourceLinkedIn: {
		title:       "job_title",
		company:     "company",
		location:    "location",
		description: "description",
		url:         "apply_link",
		postedAt:    "posted_at",
	},
	types.SourceGoogleJobs: {
		title:       "title",
		company:     "company_name",
		location:    "location",
		description: "description",
		url:         "apply_link",
		postedAt:    "posted_at",
	},
	types.SourceIndeed: {
		title:       "positionName",
		company:     "company",
		location:    "location",
		description: "description",
		url:         "url",
		postedAt:    "postingDateParsed",
	},
}

// Record converts one raw record into a canonical Posting.
// Title, company and URL are required; location and posted date fall back to
// explicit sentinels.
func Record(raw types.RawRecord, now time.Time) (types.Posting, error) {
	mapping, ok := sourceFields[raw.Source]
	if !ok {
		return types.Posting{}, &MalformedRecordError{Source: raw.Source, Field: "source mapping"}
	}

	title := clean(raw.Fields[mapping.title])
	if title == "" {
		return types.Posting{}, &MalformedRecordError{Source: raw.Source, Field: mapping.title}
	}
	company := clean(raw.Fields[mapping.company])
	if company == "" {
		return types.Posting{}, &MalformedRecordError{Source: raw.Source, Field: mapping.company}
	}
	sourceURL := strings.TrimSpace(raw.Fields[mapping.url])
	if sourceURL == "" {
		return types.Posting{}, &MalformedRecordError{Source: raw.Source, Field: mapping.url}
	}

	location := clean(raw.Fields[mapping.location])
	if location == "" {
		location = types.UnknownLocation
	}

	description := clip(strings.TrimSpace(raw.Fields[mapping.description]), MaxDescriptionLength)

	return types.Posting{
		ID:          types.DeriveID(title, company, location),
		Title:       title,
		Company:     company,
		Location:    location,
		Description: description,
		SourceURL:   sourceURL,
		Source:      raw.Source,
		PostedAt:    parsePostedAt(raw.Fields[mapping.postedAt], now),
	}, nil
}

// Records converts a batch, dropping malformed entries. Returns the postings
// and the dropped count.
func Records(raws []types.RawRecord, now time.Time) ([]types.Posting, int) {
	postings := make([]types.Posting, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		posting, err := Record(raw, now)
		if err != nil {
			dropped++
			continue
		}
		postings = append(postings, posting)
	}
	return postings, dropped
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// clip truncates s to at most limit bytes without splitting a rune.
func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

var relativePattern = regexp.MustCompile(`(?i)^(\d+)\s+(minute|hour|day|week|month)s?\s+ago$`)

// parsePostedAt parses a posting date best-effort. Sources disagree wildly:
// Indeed sends ISO timestamps, Google Jobs sends relative phrases like
// "3 days ago", LinkedIn guest pages send dates. Unparseable input yields nil.
func parsePostedAt(value string, now time.Time) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02",
	} {
		if ts, err := time.Parse(layout, value); err == nil {
			return &ts
		}
	}

	if m := relativePattern.FindStringSubmatch(value); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		var d time.Duration
		switch strings.ToLower(m[2]) {
		case "minute":
			d = time.Duration(n) * time.Minute
		case "hour":
			d = time.Duration(n) * time.Hour
		case "day":
			d = time.Duration(n) * 24 * time.Hour
		case "week":
			d = time.Duration(n) * 7 * 24 * time.Hour
		case "month":
			d = time.Duration(n) * 30 * 24 * time.Hour
		}
		ts := now.Add(-d)
		return &ts
	}

	return nil
}
