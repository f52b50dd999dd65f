// Package types provides type definitions for the job search pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// SearchCriteria holds the user's search parameters for one request.
// It is immutable for the lifetime of a search.
type SearchCriteria struct {
	Position   string   `json:"position" validate:"required,min=2"`
	Experience string   `json:"experience,omitempty"`
	Salary     string   `json:"salary,omitempty"`
	JobNature  string   `json:"jobNature,omitempty" validate:"omitempty,oneof=remote onsite hybrid"`
	Location   string   `json:"location,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
	Limit      int      `json:"limit,omitempty" validate:"gte=0,lte=100"`
}

// DefaultResultLimit is applied when a request does not set Limit.
const DefaultResultLimit = 20

// EffectiveLimit returns the result cap for this request.
func (c SearchCriteria) EffectiveLimit() int {
	if c.Limit <= 0 {
		return DefaultResultLimit
	}
	return c.Limit
}

// Terms returns the lowercased, whitespace-split match terms derived from
// the position and skills fields. Duplicates are removed, order preserved.
func (c SearchCriteria) Terms() []string {
	seen := make(map[string]bool)
	var terms []string
	add := func(s string) {
		for _, tok := range strings.Fields(strings.ToLower(s)) {
			if !seen[tok] {
				seen[tok] = true
				terms = append(terms, tok)
			}
		}
	}
	add(c.Position)
	for _, skill := range c.Skills {
		add(skill)
	}
	return terms
}

// ExclusionTerms returns the lowercased exclusion terms.
func (c SearchCriteria) ExclusionTerms() []string {
	var terms []string
	for _, t := range c.Exclude {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
