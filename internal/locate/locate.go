// Package locate finds the 9x9 training grid inside a source image.
//
// Three strategies are tried in order, first success wins:
//
//  1. Color segmentation: threshold for the gray grid-line color and
//     take the bounding box of the largest square-ish region.
//  2. Line detection: Hough transform over Canny edges, cluster
//     near-horizontal and near-vertical segments, and look for 10
//     evenly spaced lines in each direction.
//  3. Contour fallback: largest near-square contour in the image.
//
// All three failing means the photograph does not contain a usable
// grid; the caller skips that image and continues with the batch.
package locate

import (
	"errors"
	"image"
	"math"
	"sort"

	"shoulder-grid/internal/grid"
	"shoulder-grid/pkg/geometry"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// ErrGridNotFound indicates no tier could locate a grid in the image.
var ErrGridNotFound = errors.New("grid not found")

// tier is one location strategy: image in, geometry out if it applies.
type tier func(img gocv.Mat, p Params) (grid.Geometry, bool)

// Locate finds the grid geometry in a BGR image.
func Locate(img gocv.Mat, p Params) (grid.Geometry, error) {
	if img.Empty() {
		return grid.Geometry{}, ErrGridNotFound
	}

	tiers := []tier{byColor, byLines, byContour}
	for _, t := range tiers {
		if geom, ok := t(img, p); ok {
			return geom, nil
		}
	}
	return grid.Geometry{}, ErrGridNotFound
}

// byColor segments the gray grid lines and takes the best square-ish
// bounding box. This is the primary tier: app renderings draw the grid
// in a fixed gray that photographs reliably.
func byColor(img gocv.Mat, p Params) (grid.Geometry, bool) {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(0, 0, p.GrayValMin, 0),
		gocv.NewScalar(180, p.GraySatMax, p.GrayValMax, 0),
		&mask)

	// Connect broken grid lines into one region
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{3, 3})
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	imgArea := float64(img.Cols() * img.Rows())
	var best geometry.RectInt
	bestScore := 0.0

	for i := 0; i < contours.Size(); i++ {
		r := gocv.BoundingRect(contours.At(i))
		rect := geometry.RectInt{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
		aspect := rect.AspectRatio()
		areaFrac := float64(rect.Area()) / imgArea

		if aspect < p.MinAspect || areaFrac < p.MinAreaFrac || areaFrac > p.MaxAreaFrac {
			continue
		}
		score := float64(rect.Area()) * aspect
		if score > bestScore {
			bestScore = score
			best = rect
		}
	}

	if bestScore == 0 {
		return grid.Geometry{}, false
	}

	if refined, ok := refineBounds(img, best); ok {
		best = refined
	}

	// Force a square on the smaller dimension, centered in the region
	size := best.Width
	if best.Height < size {
		size = best.Height
	}
	x := best.X + (best.Width-size)/2
	y := best.Y + (best.Height-size)/2

	return squareGeometry(x, y, size), true
}

// byLines detects the grid from its line structure: Hough segments are
// clustered into distinct horizontal and vertical line positions, then
// scanned for a run of 10 evenly spaced lines bounding the 9 cells.
func byLines(img gocv.Mat, p Params) (grid.Geometry, bool) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, 1, math.Pi/180,
		p.HoughThreshold, p.HoughMinLineLen, p.HoughMaxLineGap)

	if lines.Rows() < 10 {
		return grid.Geometry{}, false
	}

	var hPositions, vPositions []float64
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		x1, y1, x2, y2 := float64(v[0]), float64(v[1]), float64(v[2]), float64(v[3])

		length := math.Hypot(x2-x1, y2-y1)
		if length < p.MinLineLength {
			continue
		}

		angle := math.Atan2(y2-y1, x2-x1) * 180 / math.Pi
		switch {
		case math.Abs(angle) < p.AngleTolerance ||
			math.Abs(angle-180) < p.AngleTolerance ||
			math.Abs(angle+180) < p.AngleTolerance:
			hPositions = append(hPositions, (y1+y2)/2)
		case math.Abs(math.Abs(angle)-90) < p.AngleTolerance:
			vPositions = append(vPositions, (x1+x2)/2)
		}
	}

	if len(hPositions) < 5 || len(vPositions) < 5 {
		return grid.Geometry{}, false
	}

	hClusters := clusterPositions(hPositions, p.ClusterTolerance)
	vClusters := clusterPositions(vPositions, p.ClusterTolerance)

	hGrid, okH := findEvenlySpaced(hClusters, grid.Rows+1, p.MinLineSpacing)
	vGrid, okV := findEvenlySpaced(vClusters, grid.Cols+1, p.MinLineSpacing)
	if !okH || !okV {
		return grid.Geometry{}, false
	}

	var geom grid.Geometry
	copy(geom.HLines[:], hGrid)
	copy(geom.VLines[:], vGrid)
	geom.Bounds = geometry.RectInt{
		X:      int(vGrid[0]),
		Y:      int(hGrid[0]),
		Width:  int(vGrid[grid.Cols] - vGrid[0]),
		Height: int(hGrid[grid.Rows] - hGrid[0]),
	}
	geom.CellWidth = float64(geom.Bounds.Width) / grid.Cols
	geom.CellHeight = float64(geom.Bounds.Height) / grid.Rows
	return geom, true
}

// byContour is the last resort: find the largest near-square contour
// and accept it as the grid region.
func byContour(img gocv.Mat, p Params) (grid.Geometry, bool) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 30, 100)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{5, 5})
	defer kernel.Close()
	for i := 0; i < 3; i++ {
		gocv.Dilate(edges, &edges, kernel)
	}

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var best geometry.RectInt
	bestArea := 0.0

	for i := 0; i < contours.Size(); i++ {
		r := gocv.BoundingRect(contours.At(i))
		rect := geometry.RectInt{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
		area := float64(rect.Area())

		if rect.AspectRatio() > p.FallbackMinAspect && area > bestArea && area > p.FallbackMinArea {
			best = rect
			bestArea = area
		}
	}

	if bestArea == 0 {
		return grid.Geometry{}, false
	}
	return rectGeometry(best), true
}

// refineBounds tightens a candidate box against the strongest Canny edge
// projections within a small margin. A refinement that shrinks either
// side below half the original is rejected as having latched onto
// interior content instead of the outer border.
func refineBounds(img gocv.Mat, r geometry.RectInt) (geometry.RectInt, bool) {
	const margin = 20
	x1 := maxInt(0, r.X-margin)
	y1 := maxInt(0, r.Y-margin)
	x2 := minInt(img.Cols(), r.X+r.Width+margin)
	y2 := minInt(img.Rows(), r.Y+r.Height+margin)
	if x2 <= x1 || y2 <= y1 {
		return geometry.RectInt{}, false
	}

	region := img.Region(image.Rect(x1, y1, x2, y2))
	defer region.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(region, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	// Column and row edge-count projections
	cols, rows := edges.Cols(), edges.Rows()
	vProj := make([]float64, cols)
	hProj := make([]float64, rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if edges.GetUCharAt(y, x) > 0 {
				vProj[x]++
				hProj[y]++
			}
		}
	}

	vLo, vHi, okV := strongSpan(vProj, 0.3)
	hLo, hHi, okH := strongSpan(hProj, 0.3)
	if !okV || !okH {
		return geometry.RectInt{}, false
	}

	refined := geometry.RectInt{
		X:      x1 + vLo,
		Y:      y1 + hLo,
		Width:  vHi - vLo,
		Height: hHi - hLo,
	}
	if float64(refined.Width) < float64(r.Width)*0.5 || float64(refined.Height) < float64(r.Height)*0.5 {
		return geometry.RectInt{}, false
	}
	return refined, true
}

// strongSpan returns the first and last index whose projection exceeds
// frac of the maximum.
func strongSpan(proj []float64, frac float64) (lo, hi int, ok bool) {
	maxV := 0.0
	for _, v := range proj {
		if v > maxV {
			maxV = v
		}
	}
	threshold := maxV * frac
	lo, hi = -1, -1
	for i, v := range proj {
		if v > threshold {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	if lo < 0 || hi <= lo {
		return 0, 0, false
	}
	return lo, hi, true
}

// clusterPositions merges positions closer than tolerance and returns
// the mean of each cluster, sorted ascending.
func clusterPositions(positions []float64, tolerance float64) []float64 {
	if len(positions) == 0 {
		return nil
	}
	sort.Float64s(positions)

	var clusters []float64
	current := []float64{positions[0]}
	for _, pos := range positions[1:] {
		if pos-current[len(current)-1] < tolerance {
			current = append(current, pos)
		} else {
			clusters = append(clusters, stat.Mean(current, nil))
			current = []float64{pos}
		}
	}
	clusters = append(clusters, stat.Mean(current, nil))
	return clusters
}

// findEvenlySpaced picks the window of target consecutive positions with
// the most uniform spacing. When too few lines were detected to form a
// window, the span between the first and last line is interpolated —
// interior grid lines are the ones most often lost to marker overlap.
func findEvenlySpaced(positions []float64, target int, minSpacing float64) ([]float64, bool) {
	if len(positions) < target-2 {
		return nil, false
	}

	var best []float64
	bestVar := math.Inf(1)

	for i := 0; i+target <= len(positions); i++ {
		candidate := positions[i : i+target]
		spacings := make([]float64, target-1)
		for j := 0; j < target-1; j++ {
			spacings[j] = candidate[j+1] - candidate[j]
		}
		variance := stat.PopVariance(spacings, nil)
		if variance < bestVar && stat.Mean(spacings, nil) > minSpacing {
			bestVar = variance
			best = candidate
		}
	}

	if best == nil && len(positions) >= 2 {
		start, end := positions[0], positions[len(positions)-1]
		spacing := (end - start) / float64(target-1)
		best = make([]float64, target)
		for i := range best {
			best[i] = start + float64(i)*spacing
		}
	}
	if best == nil {
		return nil, false
	}

	out := make([]float64, target)
	copy(out, best)
	return out, true
}

// squareGeometry builds grid geometry for a square region.
func squareGeometry(x, y, size int) grid.Geometry {
	return rectGeometry(geometry.RectInt{X: x, Y: y, Width: size, Height: size})
}

// rectGeometry divides a bounding box into 9x9 cells.
func rectGeometry(r geometry.RectInt) grid.Geometry {
	geom := grid.Geometry{
		Bounds:     r,
		CellWidth:  float64(r.Width) / grid.Cols,
		CellHeight: float64(r.Height) / grid.Rows,
	}
	for i := 0; i <= grid.Rows; i++ {
		geom.HLines[i] = float64(r.Y) + float64(i)*geom.CellHeight
	}
	for i := 0; i <= grid.Cols; i++ {
		geom.VLines[i] = float64(r.X) + float64(i)*geom.CellWidth
	}
	return geom
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
