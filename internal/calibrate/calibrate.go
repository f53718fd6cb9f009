// Package calibrate derives per-batch marker size classes.
//
// Size classes are relative, not absolute: marker rendering scale
// varies with device resolution and capture distance, so thresholds are
// recomputed from the size distribution of each examination's batch and
// never reused across examinations.
package calibrate

import (
	"shoulder-grid/internal/grid"

	"gonum.org/v1/gonum/floats"
)

// minRatioSpread is the smallest observed ratio range treated as a real
// spread; below this every marker rendered at effectively one size.
const minRatioSpread = 0.01

// Calibration partitions the observed diameter-ratio range into 5
// equal-width buckets. It is a value object: compute it once per batch
// and thread it into classification explicitly.
type Calibration struct {
	// Thresholds between buckets: ratio <= T1 is class 1, > T4 is class 5.
	T1, T2, T3, T4 float64

	// Degenerate marks a batch with fewer than two distinct ratios;
	// every marked cell collapses to the middle class.
	Degenerate bool
}

// Compute builds a calibration from every non-empty diameter ratio
// observed across all cells of all images in one batch.
func Compute(ratios []float64) Calibration {
	if len(ratios) < 2 {
		return Calibration{Degenerate: true}
	}

	minRatio := floats.Min(ratios)
	maxRatio := floats.Max(ratios)
	spread := maxRatio - minRatio
	if spread < minRatioSpread {
		return Calibration{Degenerate: true}
	}

	return Calibration{
		T1: minRatio + spread*0.20,
		T2: minRatio + spread*0.40,
		T3: minRatio + spread*0.60,
		T4: minRatio + spread*0.80,
	}
}

// Class maps a diameter ratio to its size class (1-5).
func (c Calibration) Class(ratio float64) int {
	if c.Degenerate {
		return 3
	}
	switch {
	case ratio > c.T4:
		return 5
	case ratio > c.T3:
		return 4
	case ratio > c.T2:
		return 3
	case ratio > c.T1:
		return 2
	default:
		return 1
	}
}

// Apply assigns size classes to every marked cell of a parsed grid.
func (c Calibration) Apply(p *grid.ParsedGrid) {
	for i := range p.Cells {
		if p.Cells[i].Hand == grid.HandNone {
			continue
		}
		p.Cells[i].SizeClass = c.Class(p.Cells[i].SizeRatio)
	}
}

// CollectRatios gathers the diameter ratios of every marked cell across
// a batch of parsed grids, in input order.
func CollectRatios(grids []*grid.ParsedGrid) []float64 {
	var ratios []float64
	for _, g := range grids {
		for _, cell := range g.Cells {
			if cell.Hand != grid.HandNone {
				ratios = append(ratios, cell.SizeRatio)
			}
		}
	}
	return ratios
}
