// Package sources provides adapters that fetch raw job postings from
// external listing providers. Each adapter fails independently and never
// lets a provider error escape as a panic or request-level failure.
package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/job-finder/internal/types"
)

// Adapter fetches raw posting records for a search from one provider.
type Adapter interface {
	// Source identifies the provider this adapter talks to.
	Source() types.Source
	// Fetch returns raw records for the criteria. Implementations honor
	// context cancellation and return a TimeoutError or FetchError on
	// failure.
	Fetch(ctx context.Context, criteria types.SearchCriteria) ([]types.RawRecord, error)
}

// TimeoutError indicates a source exceeded its per-source deadline.
type TimeoutError struct {
	Source types.Source
	Cause  error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("source %s timed out: %v", e.Source, e.Cause)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// FetchError indicates a source failed for a non-timeout reason.
type FetchError struct {
	Source  types.Source
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("source %s: %s", e.Source, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// wrapErr classifies a provider error as a timeout or a plain fetch failure.
func wrapErr(src types.Source, message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TimeoutError{Source: src, Cause: err}
	}
	return &FetchError{Source: src, Message: message, Cause: err}
}
