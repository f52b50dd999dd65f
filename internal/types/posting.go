package types

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// Source identifies an external job listing provider.
type Source string

// Supported listing sources.
const (
	SourceLinkedIn   Source = "linkedin"
	SourceGoogleJobs Source = "googlejobs"
	SourceIndeed     Source = "indeed"
)

// RawRecord is a source-specific, semi-typed payload produced by a source
// adapter. Field keys are source-native; the normalizer owns the mapping to
// canonical Posting fields.
type RawRecord struct {
	Source Source            `json:"source"`
	Fields map[string]string `json:"fields"`
}

// UnknownLocation is the sentinel for postings with no usable location.
const UnknownLocation = "Unknown"

// Posting is the canonical, deduplicated representation of one job listing.
type Posting struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Description string     `json:"description,omitempty"`
	SourceURL   string     `json:"source_url"`
	Source      Source     `json:"source"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
}

// DeriveID computes the stable posting id from normalized title, company and
// location. The same real-world job seen on two sources hashes to the same id.
func DeriveID(title, company, location string) string {
	key := normalizeKey(title) + "|" + normalizeKey(company) + "|" + normalizeKey(location)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

// normalizeKey lowercases and collapses internal whitespace so formatting
// differences between sources do not change the derived id.
func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Strategy names the scoring path that produced a relevance score.
type Strategy string

// Scoring strategies.
const (
	StrategyAI      Strategy = "ai"
	StrategyKeyword Strategy = "keyword"
)

// ScoredPosting is a Posting with its relevance score and the strategy that
// assigned it.
type ScoredPosting struct {
	Posting
	RelevanceScore float64  `json:"relevance_score"`
	Strategy       Strategy `json:"scoring_strategy"`
}

// SortScored orders postings by relevance score descending, ties broken by
// posted date descending (unknown dates last) then id ascending. The ordering
// is total, so re-sorting is idempotent.
func SortScored(postings []ScoredPosting) {
	sort.SliceStable(postings, func(i, j int) bool {
		a, b := postings[i], postings[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		switch {
		case a.PostedAt != nil && b.PostedAt == nil:
			return true
		case a.PostedAt == nil && b.PostedAt != nil:
			return false
		case a.PostedAt != nil && b.PostedAt != nil && !a.PostedAt.Equal(*b.PostedAt):
			return a.PostedAt.After(*b.PostedAt)
		}
		return a.ID < b.ID
	})
}

// SourceState describes the outcome of one source fetch.
type SourceState string

// Source fetch outcomes.
const (
	SourceOK      SourceState = "ok"
	SourceFailed  SourceState = "failed"
	SourcePartial SourceState = "partial"
)

// SourceStatus reports per-source observability data for one search.
type SourceStatus struct {
	Source  Source      `json:"source"`
	State   SourceState `json:"state"`
	Records int         `json:"records"`
	Dropped int         `json:"dropped,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SearchResult is the ranked, capped output of one search request.
type SearchResult struct {
	Jobs     []ScoredPosting `json:"relevant_jobs"`
	Sources  []SourceStatus  `json:"sources"`
	Degraded bool            `json:"degraded,omitempty"`
}
