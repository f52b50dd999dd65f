// Package ratelimit bounds AI scoring calls with a fixed-window budget.
package ratelimit

import (
	"sync"
	"time"
)

// Defaults sized to the Gemini free-tier quota.
const (
	DefaultLimit  = 15
	DefaultWindow = 60 * time.Second
)

// Budget is a fixed-window call counter. Acquire spends one call from the
// current window; when the window elapses the count resets in full. The
// check-and-spend is atomic, so concurrent callers can never exceed the
// limit within one window.
type Budget struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	used        int
	windowStart time.Time
	now         func() time.Time // injectable for tests
}

// NewBudget creates a budget allowing limit calls per window. Non-positive
// arguments fall back to the defaults.
func NewBudget(limit int, window time.Duration) *Budget {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Budget{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Acquire reserves one call from the current window. It returns false when
// the window is exhausted; it never blocks.
func (b *Budget) Acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roll()
	if b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

// Remaining reports how many calls are left in the current window.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roll()
	return b.limit - b.used
}

// Limit returns the per-window call limit.
func (b *Budget) Limit() int {
	return b.limit
}

// roll resets the counter when the current window has elapsed.
// Callers must hold b.mu.
func (b *Budget) roll() {
	now := b.now()
	if b.windowStart.IsZero() || now.Sub(b.windowStart) >= b.window {
		b.windowStart = now
		b.used = 0
	}
}
