package scoring

import (
	"context"
	"strings"

	"github.com/jonathan/job-finder/internal/types"
)

// Term weights: a term found in the title counts three times as much as one
// found in the description.
const (
	titleWeight       = 3.0
	descriptionWeight = 1.0
)

// Keyword is the deterministic fallback scorer. It is pure, has no external
// dependencies and never fails, so a usable ranking exists even when nothing
// else is reachable.
type Keyword struct{}

// NewKeyword constructs the keyword scorer.
func NewKeyword() Keyword {
	return Keyword{}
}

// Name identifies the strategy.
func (Keyword) Name() types.Strategy {
	return types.StrategyKeyword
}

// Score assigns every posting in the batch a score; the error is always nil.
func (k Keyword) Score(_ context.Context, criteria types.SearchCriteria, batch []types.Posting) (map[string]float64, error) {
	terms := criteria.Terms()
	exclusions := criteria.ExclusionTerms()

	scores := make(map[string]float64, len(batch))
	for _, posting := range batch {
		scores[posting.ID] = k.scoreOne(posting, terms, exclusions)
	}
	return scores, nil
}

// scoreOne computes the weighted term-match ratio for one posting. Any
// exclusion term appearing anywhere in the posting zeroes the score.
func (Keyword) scoreOne(posting types.Posting, terms, exclusions []string) float64 {
	title := strings.ToLower(posting.Title)
	description := strings.ToLower(posting.Description)
	company := strings.ToLower(posting.Company)

	for _, excl := range exclusions {
		if strings.Contains(title, excl) || strings.Contains(description, excl) || strings.Contains(company, excl) {
			return 0
		}
	}

	if len(terms) == 0 {
		return 0
	}

	matched := 0.0
	for _, term := range terms {
		if strings.Contains(title, term) {
			matched += titleWeight
		}
		if strings.Contains(description, term) {
			matched += descriptionWeight
		}
	}

	// Normalized so a posting matching every term in the title scores 1.0.
	score := matched / (titleWeight * float64(len(terms)))
	if score > 1.0 {
		score = 1.0
	}
	return score
}
