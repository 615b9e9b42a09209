package chain

import (
	"math"
	"sort"
)

// ClosestStrike returns the strike minimizing |strike - target|. Ties
// are broken toward the lower strike (first occurrence in ascending
// order). Returns 0, false for an empty list.
func ClosestStrike(strikes []float64, target float64) (float64, bool) {
	if len(strikes) == 0 {
		return 0, false
	}

	sorted := ascending(strikes)

	best := sorted[0]
	bestDist := math.Abs(sorted[0] - target)
	for _, s := range sorted[1:] {
		d := math.Abs(s - target)
		if d < bestDist {
			best = s
			bestDist = d
		}
	}
	return best, true
}

// WindowAround returns the contiguous run of strikes within radius
// positions of center, in ascending order. The window is clamped at the
// edges, so it may hold fewer than 2*radius+1 entries. If center is not
// present the position of the closest strike is used.
func WindowAround(strikes []float64, center float64, radius int) []float64 {
	if len(strikes) == 0 || radius < 0 {
		return nil
	}

	sorted := ascending(strikes)

	// Locate center, or the nearest strike to it.
	idx := sort.SearchFloat64s(sorted, center)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	} else if idx > 0 && sorted[idx] != center {
		if math.Abs(sorted[idx-1]-center) <= math.Abs(sorted[idx]-center) {
			idx--
		}
	}

	lo := idx - radius
	if lo < 0 {
		lo = 0
	}
	hi := idx + radius + 1
	if hi > len(sorted) {
		hi = len(sorted)
	}

	window := make([]float64, hi-lo)
	copy(window, sorted[lo:hi])
	return window
}

// ascending returns a sorted copy, leaving the input untouched.
func ascending(strikes []float64) []float64 {
	sorted := make([]float64, len(strikes))
	copy(sorted, strikes)
	sort.Float64s(sorted)
	return sorted
}
