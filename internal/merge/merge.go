// Package merge combines the classified grids of one examination into
// one robust grid per hand.
//
// A single outlier photograph (glare, motion blur) should not dominate
// the diagnosis, so each cell takes the median size class over every
// image that reported the hand there. The median is order-independent,
// which also makes the merge deterministic regardless of image order.
package merge

import (
	"sort"

	"shoulder-grid/internal/grid"
)

// Grids merges parsed grids into one MergedGrid per hand present in any
// input. It runs once per examination, after every image in the batch
// has been classified; there is no incremental form.
func Grids(inputs []*grid.ParsedGrid) map[grid.HandColor]*grid.MergedGrid {
	merged := make(map[grid.HandColor]*grid.MergedGrid)

	for _, hand := range []grid.HandColor{grid.HandLeft, grid.HandRight} {
		if g := mergeHand(inputs, hand); g != nil {
			merged[hand] = g
		}
	}
	return merged
}

// mergeHand builds the merged grid for one hand, or nil when no input
// reported that hand anywhere.
func mergeHand(inputs []*grid.ParsedGrid, hand grid.HandColor) *grid.MergedGrid {
	out := &grid.MergedGrid{Hand: hand}
	seen := false

	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			idx := row*grid.Cols + col
			state := grid.CellState{Row: row, Col: col}

			var classes []int
			for _, in := range inputs {
				if c := in.Cells[idx]; c.Hand == hand {
					classes = append(classes, c.SizeClass)
				}
			}

			if len(classes) > 0 {
				seen = true
				state.Hand = hand
				state.Mark = hand.Mark()
				state.SizeClass = medianClass(classes)
			}
			out.Cells[idx] = state
		}
	}

	if !seen {
		return nil
	}
	return out
}

// medianClass returns the integer median of size classes. For an even
// count the two middle values average; a .5 result rounds down so
// aggregation never inflates severity.
func medianClass(classes []int) int {
	sorted := make([]int, len(classes))
	copy(sorted, classes)
	sort.Ints(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	// Integer division floors the .5 tie toward the lower class.
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
