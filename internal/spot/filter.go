package spot

import "sort"

// Largest returns the maxSpots largest spots by diameter, descending. The
// sort is stable, so spots with equal diameters keep their discovery order.
// The input slice is not modified; an empty input or maxSpots = 0 yields an
// empty result.
func Largest(spots []Spot, maxSpots int) []Spot {
	if maxSpots < 0 {
		maxSpots = 0
	}

	sorted := make([]Spot, len(spots))
	copy(sorted, spots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DiamPx > sorted[j].DiamPx
	})

	if len(sorted) > maxSpots {
		sorted = sorted[:maxSpots]
	}
	return sorted
}
