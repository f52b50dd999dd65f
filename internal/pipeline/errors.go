package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/job-finder/internal/types"
)

// NoSourcesAvailableError is returned when every configured source failed and
// no postings could be collected. It is the only request-level failure the
// pipeline produces.
type NoSourcesAvailableError struct {
	Statuses []types.SourceStatus
}

func (e *NoSourcesAvailableError) Error() string {
	var parts []string
	for _, s := range e.Statuses {
		parts = append(parts, fmt.Sprintf("%s: %s", s.Source, s.Error))
	}
	return fmt.Sprintf("all sources failed: %s", strings.Join(parts, "; "))
}
