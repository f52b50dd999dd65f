// Package dedupe collapses postings that describe the same real-world job
// across sources.
package dedupe

import "github.com/jonathan/job-finder/internal/types"

// Postings deduplicates by derived id in a single pass. Output order follows
// the first appearance of each id, so the source fan-out order decides which
// duplicate anchors the result. When two postings collide, the merged record
// keeps the richer field set.
func Postings(postings []types.Posting) []types.Posting {
	byID := make(map[string]int, len(postings))
	result := make([]types.Posting, 0, len(postings))

	for _, p := range postings {
		idx, seen := byID[p.ID]
		if !seen {
			byID[p.ID] = len(result)
			result = append(result, p)
			continue
		}
		result[idx] = merge(result[idx], p)
	}

	return result
}

// merge resolves a collision between the first-seen posting and a later
// duplicate. A present posted date wins; otherwise the longer description
// does. The winner keeps its own source tag.
func merge(first, dupe types.Posting) types.Posting {
	if richer(dupe, first) {
		return dupe
	}
	return first
}

// richer reports whether a beats b on field completeness.
func richer(a, b types.Posting) bool {
	if (a.PostedAt != nil) != (b.PostedAt != nil) {
		return a.PostedAt != nil
	}
	return len(a.Description) > len(b.Description)
}
