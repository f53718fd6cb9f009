package cell

import (
	"image"
	"image/color"
	"testing"

	"shoulder-grid/internal/grid"
	"shoulder-grid/pkg/geometry"

	"gocv.io/x/gocv"
)

// testGeometry builds the geometry of a grid at (x,y) with square cells.
func testGeometry(x, y, cellSize int) grid.Geometry {
	size := cellSize * grid.Cols
	geom := grid.Geometry{
		Bounds:     geometry.RectInt{X: x, Y: y, Width: size, Height: size},
		CellWidth:  float64(cellSize),
		CellHeight: float64(cellSize),
	}
	for i := 0; i <= grid.Rows; i++ {
		geom.HLines[i] = float64(y + i*cellSize)
	}
	for i := 0; i <= grid.Cols; i++ {
		geom.VLines[i] = float64(x + i*cellSize)
	}
	return geom
}

// whiteCanvas returns a white BGR image.
func whiteCanvas(size int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(255, 255, 255, 0), size, size, gocv.MatTypeCV8UC3)
}

// markCell draws a filled circle at the center of cell (row,col).
func markCell(img *gocv.Mat, geom grid.Geometry, row, col, radius int, c color.RGBA) {
	center := geom.CellRect(row, col).Center()
	gocv.Circle(img, image.Pt(int(center.X), int(center.Y)), radius, c, -1)
}

var (
	cyan  = color.RGBA{0, 255, 255, 0}
	green = color.RGBA{0, 255, 0, 0}
	red   = color.RGBA{255, 0, 0, 0}
)

func TestClassifyGridHandMarkers(t *testing.T) {
	geom := testGeometry(50, 50, 45)
	img := whiteCanvas(520)
	defer img.Close()
	markCell(&img, geom, 2, 2, 16, cyan)
	markCell(&img, geom, 6, 6, 11, green)

	parsed := ClassifyGrid(img, geom, DefaultParams())

	marked := parsed.MarkedCells()
	if len(marked) != 2 {
		t.Fatalf("got %d marked cells, want 2", len(marked))
	}

	c := parsed.At(2, 2)
	if c.Mark != grid.MarkCyan || c.Hand != grid.HandLeft {
		t.Fatalf("cell (2,2): mark %v hand %v, want CYAN LEFT", c.Mark, c.Hand)
	}
	g := parsed.At(6, 6)
	if g.Mark != grid.MarkGreen || g.Hand != grid.HandRight {
		t.Fatalf("cell (6,6): mark %v hand %v, want GREEN RIGHT", g.Mark, g.Hand)
	}

	// The cyan circle is drawn larger, so its diameter ratio must come
	// out larger; both must be plausible fractions of the cell width.
	if c.SizeRatio <= g.SizeRatio {
		t.Fatalf("cyan ratio %v not larger than green ratio %v", c.SizeRatio, g.SizeRatio)
	}
	if c.SizeRatio < 0.6 || c.SizeRatio > 0.95 {
		t.Fatalf("cyan ratio %v outside expected range", c.SizeRatio)
	}
	if g.SizeRatio < 0.35 || g.SizeRatio > 0.75 {
		t.Fatalf("green ratio %v outside expected range", g.SizeRatio)
	}
}

func TestCoverageThreshold(t *testing.T) {
	geom := testGeometry(50, 50, 45)
	img := whiteCanvas(520)
	defer img.Close()
	markCell(&img, geom, 3, 3, 6, green)

	// A small marker passes the default threshold.
	parsed := ClassifyGrid(img, geom, DefaultParams())
	if parsed.At(3, 3).Hand != grid.HandRight {
		t.Fatal("small marker should classify under default coverage")
	}

	// A strict threshold rejects it.
	parsed = ClassifyGrid(img, geom, DefaultParams().WithCoverage(0.8))
	if parsed.At(3, 3).Hand != grid.HandNone {
		t.Fatal("small marker should be rejected under strict coverage")
	}
}

func TestClassifyGridNonHandColor(t *testing.T) {
	geom := testGeometry(50, 50, 45)
	img := whiteCanvas(520)
	defer img.Close()
	markCell(&img, geom, 4, 4, 14, red)

	parsed := ClassifyGrid(img, geom, DefaultParams())

	c := parsed.At(4, 4)
	if c.Mark != grid.MarkRed {
		t.Fatalf("cell (4,4): mark %v, want RED", c.Mark)
	}
	// Red is recognized but belongs to no hand, so no cell is marked.
	if c.Hand != grid.HandNone {
		t.Fatalf("cell (4,4): hand %v, want NONE", c.Hand)
	}
	if n := len(parsed.MarkedCells()); n != 0 {
		t.Fatalf("got %d marked cells, want 0", n)
	}
}

func TestClassifyGridEmpty(t *testing.T) {
	geom := testGeometry(50, 50, 45)
	img := whiteCanvas(520)
	defer img.Close()

	parsed := ClassifyGrid(img, geom, DefaultParams())
	for _, c := range parsed.Cells {
		if c.Mark != grid.MarkNone || c.Hand != grid.HandNone {
			t.Fatalf("cell (%d,%d) spuriously marked %v", c.Row, c.Col, c.Mark)
		}
	}
}

func TestClassifyGridCroppedAtEdge(t *testing.T) {
	// Grid extends past the right and bottom image edges; out-of-frame
	// cells must classify as unmarked, not crash.
	geom := testGeometry(200, 200, 45)
	img := whiteCanvas(400)
	defer img.Close()
	markCell(&img, geom, 0, 0, 14, cyan)

	parsed := ClassifyGrid(img, geom, DefaultParams())
	if parsed.At(0, 0).Hand != grid.HandLeft {
		t.Fatal("in-frame cell should classify")
	}
	if parsed.At(8, 8).Mark != grid.MarkNone {
		t.Fatal("out-of-frame cell should be unmarked")
	}
}

func TestDetectCenterIgnoresNeighborSpill(t *testing.T) {
	// A marker hugging the cell border must not claim the neighboring
	// cell: the vote only sees the central region.
	geom := testGeometry(50, 50, 45)
	img := whiteCanvas(520)
	defer img.Close()

	// Circle centered on the border between (4,4) and (4,5).
	border := geom.VLines[5]
	centerY := geom.CellRect(4, 4).Center().Y
	gocv.Circle(&img, image.Pt(int(border), int(centerY)), 10, green, -1)

	parsed := ClassifyGrid(img, geom, DefaultParams())
	if parsed.At(4, 4).Hand != grid.HandNone || parsed.At(4, 5).Hand != grid.HandNone {
		t.Fatal("border spill should not mark either cell")
	}
}
