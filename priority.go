package filecache

import "math"

// PriorityFunc scores an item's eligibility to stay cached; higher
// survives. Implementations must be pure and monotone in both the
// access count and the size, and must not return negative scores.
type PriorityFunc func(accessCount, size int64) int64

// DefaultPriority scores an item as round(sqrt(size) * accessCount).
// Taking the square root of the size keeps one large, rarely requested
// item from outranking many small, frequently requested ones, while
// repeated access grows the score linearly.
func DefaultPriority(accessCount, size int64) int64 {
	return int64(math.Round(math.Sqrt(float64(size)) * float64(accessCount)))
}
