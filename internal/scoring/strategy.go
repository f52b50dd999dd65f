// Package scoring ranks postings against search criteria. Two strategies
// exist: an AI scorer backed by Gemini and a deterministic keyword scorer
// that serves as the availability floor. Scores are advisory ranking signals
// in [0,1]; no strategy drops postings.
package scoring

import (
	"context"

	"github.com/jonathan/job-finder/internal/types"
)

// Strategy scores a batch of postings against the criteria. The returned map
// is keyed by posting id; a posting absent from the map was not scored and
// the caller decides the fallback.
type Strategy interface {
	Name() types.Strategy
	Score(ctx context.Context, criteria types.SearchCriteria, batch []types.Posting) (map[string]float64, error)
}
