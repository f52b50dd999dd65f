package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/api/googleapi"

	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/types"
)

// promptDescriptionLimit caps the description excerpt sent per posting.
const promptDescriptionLimit = 600

// scoreResponseSchema is the contract the model's JSON must satisfy before
// any score is used.
const scoreResponseSchema = `{
	"type": "object",
	"required": ["scores"],
	"properties": {
		"scores": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "score"],
				"properties": {
					"id": {"type": "string"},
					"score": {"type": "number"}
				}
			}
		}
	}
}`

// AI scores a whole batch of postings with a single Gemini call.
type AI struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewAI constructs the AI scorer.
func NewAI(client llm.Client) *AI {
	return &AI{client: client, tier: llm.TierLite}
}

// Name identifies the strategy.
func (a *AI) Name() types.Strategy {
	return types.StrategyAI
}

// scoreResponse mirrors the expected JSON response.
type scoreResponse struct {
	Scores []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	} `json:"scores"`
}

// Score sends one batch to the model and returns the id→score mapping.
// Failures come back as typed errors (UnavailableError, RateLimitedError,
// MalformedResponseError); the caller selects the fallback.
func (a *AI) Score(ctx context.Context, criteria types.SearchCriteria, batch []types.Posting) (map[string]float64, error) {
	if len(batch) == 0 {
		return map[string]float64{}, nil
	}

	prompt := buildScoringPrompt(criteria, batch)

	raw, err := a.client.GenerateJSON(ctx, prompt, a.tier)
	if err != nil {
		return nil, classifyProviderError(err)
	}
	raw = llm.CleanJSONBlock(raw)

	if err := validateScoreResponse(raw); err != nil {
		return nil, err
	}

	var response scoreResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		return nil, &MalformedResponseError{Message: "failed to parse score mapping", Cause: err}
	}

	known := make(map[string]bool, len(batch))
	for _, p := range batch {
		known[p.ID] = true
	}

	scores := make(map[string]float64, len(response.Scores))
	for _, entry := range response.Scores {
		if !known[entry.ID] {
			continue // hallucinated id
		}
		scores[entry.ID] = clamp01(entry.Score)
	}

	return scores, nil
}

// classifyProviderError maps a Gemini transport error to the scoring error
// taxonomy.
func classifyProviderError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return &RateLimitedError{Cause: err}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource exhausted") {
		return &RateLimitedError{Cause: err}
	}
	return &UnavailableError{Cause: err}
}

// validateScoreResponse checks the raw response against the JSON Schema.
func validateScoreResponse(raw string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(scoreResponseSchema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return &MalformedResponseError{Message: "response is not valid JSON", Cause: err}
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return &MalformedResponseError{Message: strings.Join(details, "; ")}
	}
	return nil
}

// buildScoringPrompt lists the batch with posting ids and asks for one score
// per posting in the exact JSON shape the schema enforces.
func buildScoringPrompt(criteria types.SearchCriteria, batch []types.Posting) string {
	var sb strings.Builder

	sb.WriteString("You are scoring job postings for relevance to a job seeker's search criteria.\n\n")
	sb.WriteString("SEARCH CRITERIA:\n")
	sb.WriteString(fmt.Sprintf("- Position: %s\n", orUnspecified(criteria.Position)))
	sb.WriteString(fmt.Sprintf("- Experience: %s\n", orUnspecified(criteria.Experience)))
	sb.WriteString(fmt.Sprintf("- Location: %s\n", orUnspecified(criteria.Location)))
	sb.WriteString(fmt.Sprintf("- Job Nature: %s\n", orUnspecified(criteria.JobNature)))
	sb.WriteString(fmt.Sprintf("- Salary: %s\n", orUnspecified(criteria.Salary)))
	sb.WriteString(fmt.Sprintf("- Skills: %s\n", orUnspecified(strings.Join(criteria.Skills, ", "))))
	if len(criteria.Exclude) > 0 {
		sb.WriteString(fmt.Sprintf("- Negative signals (lower the score when present): %s\n", strings.Join(criteria.Exclude, ", ")))
	}

	sb.WriteString("\nJOB POSTINGS:\n")
	for i, p := range batch {
		description := clipRunes(p.Description, promptDescriptionLimit)
		sb.WriteString(fmt.Sprintf("%d. id=%s\n   Title: %s\n   Company: %s\n   Location: %s\n   Description: %s\n",
			i+1, p.ID, p.Title, p.Company, p.Location, description))
	}

	sb.WriteString("\nTASK: For each posting, assign a relevance score from 0.0 to 1.0 ")
	sb.WriteString("considering title match, location match, required experience and skill overlap.\n")
	sb.WriteString("Return EXACTLY this JSON shape with one entry per posting:\n")
	sb.WriteString(`{"scores": [{"id": "<posting id>", "score": <float 0-1>}]}`)
	sb.WriteString("\n")

	return sb.String()
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}

// clipRunes truncates s to at most limit bytes without splitting a rune.
func clipRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
