package scoring

import "fmt"

// UnavailableError indicates the AI scoring service could not be reached.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("AI scorer unavailable: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// RateLimitedError indicates the provider rejected the call for quota
// reasons. Distinct from the pipeline's own preemptive rate budget.
type RateLimitedError struct {
	Cause error
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("AI scorer rate limited: %v", e.Cause)
}

func (e *RateLimitedError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError indicates the AI response did not parse into the
// expected score mapping.
type MalformedResponseError struct {
	Message string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed AI response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed AI response: %s", e.Message)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}
