// Package cell samples and classifies the 81 grid cells of a located grid.
//
// Classification works on the central sub-region of each cell only, so
// grid lines and markers spilling over from neighboring cells cannot
// contaminate the color vote. Marker size is then measured over the
// whole cell with a minimal enclosing circle.
package cell

import (
	"image"

	"shoulder-grid/internal/grid"

	"gocv.io/x/gocv"
)

// Params holds cell classification tuning parameters.
type Params struct {
	// CenterRegionRatio is the fraction of the cell (by linear
	// dimension) sampled for the color vote.
	CenterRegionRatio float64

	// MinSaturation excludes gray/white pixels from every band; grid
	// lines and the diagram background are desaturated.
	MinSaturation float64

	// MinCoverage is the fraction of center-region pixels a band must
	// claim before the cell counts as marked.
	MinCoverage float64

	// CellPadding trims this many pixels off each cell edge before
	// sampling, keeping grid lines out of the cell image entirely.
	CellPadding int
}

// DefaultParams returns classification parameters calibrated against
// the reference screenshot corpus.
func DefaultParams() Params {
	return Params{
		CenterRegionRatio: 0.4,
		MinSaturation:     80,
		MinCoverage:       0.2,
		CellPadding:       2,
	}
}

// WithCoverage returns a copy with the marked-cell coverage threshold
// adjusted, for captures with washed-out or oversaturated markers.
func (p Params) WithCoverage(minCoverage float64) Params {
	p.MinCoverage = minCoverage
	return p
}

// ClassifyGrid classifies all 81 cells of a located grid.
//
// The returned ParsedGrid carries hand color and size ratio per cell;
// size classes are left unset because they are relative to the whole
// batch — run calibration over the batch and apply it afterwards.
func ClassifyGrid(img gocv.Mat, geom grid.Geometry, p Params) *grid.ParsedGrid {
	parsed := &grid.ParsedGrid{Geometry: geom}

	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			state := grid.CellState{Row: row, Col: col}

			cellImg, ok := extractCell(img, geom, row, col, p.CellPadding)
			if ok {
				state.Mark, state.SizeRatio = classifyCell(cellImg, p)
				state.Hand = state.Mark.Hand()
				cellImg.Close()
			}

			parsed.Cells[state.Index()] = state
		}
	}
	return parsed
}

// extractCell returns the padded cell sub-image as a view into img.
// Returns ok=false when the cell falls outside the image (grid cropped
// at the photo edge).
func extractCell(img gocv.Mat, geom grid.Geometry, row, col, pad int) (gocv.Mat, bool) {
	y1 := int(geom.HLines[row]) + pad
	y2 := int(geom.HLines[row+1]) - pad
	x1 := int(geom.VLines[col]) + pad
	x2 := int(geom.VLines[col+1]) - pad

	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 > img.Cols() {
		x2 = img.Cols()
	}
	if y2 > img.Rows() {
		y2 = img.Rows()
	}
	if x2-x1 < 2 || y2-y1 < 2 {
		return gocv.Mat{}, false
	}
	return img.Region(image.Rect(x1, y1, x2, y2)), true
}

// classifyCell votes color bands over the central sub-region and, on a
// hit, measures the marker's diameter relative to the cell width.
func classifyCell(cellImg gocv.Mat, p Params) (grid.MarkColor, float64) {
	mark := detectCenterColor(cellImg, p)
	if mark == grid.MarkNone {
		return grid.MarkNone, 0
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(cellImg, &hsv, gocv.ColorBGRToHSV)

	mask := bandMask(hsv, mark, p.MinSaturation)
	defer mask.Close()

	return mark, diameterRatio(mask, cellImg.Cols())
}

// detectCenterColor runs the band vote over the central sub-region.
// The band with the highest pixel coverage wins; below MinCoverage the
// cell is unmarked. An ambiguous cell therefore degrades to no mark,
// indistinguishable from "no pain reported here".
func detectCenterColor(cellImg gocv.Mat, p Params) grid.MarkColor {
	h, w := cellImg.Rows(), cellImg.Cols()
	marginH := int(float64(h) * (1 - p.CenterRegionRatio) / 2)
	marginW := int(float64(w) * (1 - p.CenterRegionRatio) / 2)
	if h-2*marginH < 1 || w-2*marginW < 1 {
		return grid.MarkNone
	}

	center := cellImg.Region(image.Rect(marginW, marginH, w-marginW, h-marginH))
	defer center.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(center, &hsv, gocv.ColorBGRToHSV)

	centerArea := float64(hsv.Rows() * hsv.Cols())
	best := grid.MarkNone
	bestCoverage := 0.0

	for _, b := range markerBands {
		mask := bandMask(hsv, b.mark, p.MinSaturation)
		coverage := float64(gocv.CountNonZero(mask)) / centerArea
		mask.Close()

		if coverage > bestCoverage {
			bestCoverage = coverage
			best = b.mark
		}
	}

	if bestCoverage < p.MinCoverage {
		return grid.MarkNone
	}
	return best
}

// bandMask builds the binary mask of pixels falling in the band's HSV
// ranges. minSaturation raises the saturation floor of every range so
// gray and white pixels never match.
func bandMask(hsv gocv.Mat, mark grid.MarkColor, minSaturation float64) gocv.Mat {
	mask := gocv.NewMatWithSize(hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8U)

	for _, b := range markerBands {
		if b.mark != mark {
			continue
		}
		for _, r := range b.ranges {
			sMin := r.sMin
			if minSaturation > sMin {
				sMin = minSaturation
			}
			rangeMask := gocv.NewMat()
			gocv.InRangeWithScalar(hsv,
				gocv.NewScalar(r.hMin, sMin, r.vMin, 0),
				gocv.NewScalar(r.hMax, r.sMax, r.vMax, 0),
				&rangeMask)
			gocv.BitwiseOr(mask, rangeMask, &mask)
			rangeMask.Close()
		}
	}
	return mask
}

// diameterRatio measures the marker via the minimal enclosing circle of
// the largest mask contour: 2*radius / cell width. Overlapping markers
// resolve to the larger detected circle. Returns 0 when the mask holds
// no contour.
func diameterRatio(mask gocv.Mat, cellWidth int) float64 {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 || cellWidth == 0 {
		return 0
	}

	largestIdx := 0
	largestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > largestArea {
			largestArea = area
			largestIdx = i
		}
	}

	_, _, radius := gocv.MinEnclosingCircle(contours.At(largestIdx))
	return 2 * float64(radius) / float64(cellWidth)
}
