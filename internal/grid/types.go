// Package grid defines the data model for 9x9 training-result grids.
package grid

import (
	"fmt"

	"shoulder-grid/pkg/geometry"
)

// Grid dimensions. Training-result screens always render a 9x9 grid of
// shoulder-motion directions around a center point.
const (
	Rows     = 9
	Cols     = 9
	NumCells = Rows * Cols

	// Size classes run 1 (smallest marker) through 5 (largest).
	MinSizeClass = 1
	MaxSizeClass = 5
)

// MarkColor is the raw color detected inside a cell.
type MarkColor int

const (
	MarkNone MarkColor = iota
	MarkCyan
	MarkGreen
	MarkBlue
	MarkRed
	MarkYellow
)

func (c MarkColor) String() string {
	switch c {
	case MarkCyan:
		return "CYAN"
	case MarkGreen:
		return "GREEN"
	case MarkBlue:
		return "BLUE"
	case MarkRed:
		return "RED"
	case MarkYellow:
		return "YELLOW"
	default:
		return "NONE"
	}
}

// HandColor identifies which hand's marker occupies a cell.
// By app convention cyan markers are the left hand and green the right;
// the color itself carries no severity meaning.
type HandColor int

const (
	HandNone HandColor = iota
	HandLeft
	HandRight
)

func (h HandColor) String() string {
	switch h {
	case HandLeft:
		return "LEFT"
	case HandRight:
		return "RIGHT"
	default:
		return "NONE"
	}
}

// Mark returns the marker color conventionally drawn for this hand.
func (h HandColor) Mark() MarkColor {
	switch h {
	case HandLeft:
		return MarkCyan
	case HandRight:
		return MarkGreen
	default:
		return MarkNone
	}
}

// Hand maps a raw mark color to the hand it represents.
// Non-hand colors (and no color) map to HandNone.
func (c MarkColor) Hand() HandColor {
	switch c {
	case MarkCyan:
		return HandLeft
	case MarkGreen:
		return HandRight
	default:
		return HandNone
	}
}

// CellState is the classified state of one grid position.
// SizeRatio and SizeClass are meaningful only when Hand != HandNone.
type CellState struct {
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Hand      HandColor `json:"hand"`
	Mark      MarkColor `json:"mark"`       // Raw detected color, kept for verification output
	SizeRatio float64   `json:"size_ratio"` // Marker diameter / cell width
	SizeClass int       `json:"size_class"` // 1-5, assigned by calibration
}

// Index returns the row-major cell index (0-80).
func (c CellState) Index() int {
	return c.Row*Cols + c.Col
}

// Geometry describes where the 9x9 grid sits in a source image.
// HLines and VLines hold the 10 grid-line positions bounding the 9 cells.
type Geometry struct {
	Bounds     geometry.RectInt  `json:"bounds"`
	CellWidth  float64           `json:"cell_width"`
	CellHeight float64           `json:"cell_height"`
	HLines     [Rows + 1]float64 `json:"grid_lines_h"`
	VLines     [Cols + 1]float64 `json:"grid_lines_v"`
}

// CellRect returns the screen-space rectangle of a cell.
func (g Geometry) CellRect(row, col int) geometry.Rect {
	return geometry.Rect{
		X:      g.VLines[col],
		Y:      g.HLines[row],
		Width:  g.VLines[col+1] - g.VLines[col],
		Height: g.HLines[row+1] - g.HLines[row],
	}
}

// ParsedGrid is one fully classified grid derived from one source image.
// Immutable once produced by the pipeline.
type ParsedGrid struct {
	Source   string              `json:"source,omitempty"` // Originating file name, if known
	Geometry Geometry            `json:"geometry"`
	Cells    [NumCells]CellState `json:"cells"`
}

// At returns the cell at (row, col).
func (p *ParsedGrid) At(row, col int) CellState {
	return p.Cells[row*Cols+col]
}

// MarkedCells returns the cells carrying a hand marker.
func (p *ParsedGrid) MarkedCells() []CellState {
	var marked []CellState
	for _, c := range p.Cells {
		if c.Hand != HandNone {
			marked = append(marked, c)
		}
	}
	return marked
}

// Validate checks the ParsedGrid invariants: dense indexing and size
// classes present exactly where a hand marker is.
func (p *ParsedGrid) Validate() error {
	for i, c := range p.Cells {
		if c.Index() != i {
			return fmt.Errorf("cell %d indexed as (%d,%d)", i, c.Row, c.Col)
		}
		if c.Hand == HandNone {
			continue
		}
		if c.SizeClass < MinSizeClass || c.SizeClass > MaxSizeClass {
			return fmt.Errorf("cell %d: size class %d out of range", i, c.SizeClass)
		}
	}
	return nil
}

// MergedGrid is the robust multi-image aggregation of one hand's
// reported pain pattern for one examination. Cells where the hand made
// no report have Hand == HandNone and no size class.
type MergedGrid struct {
	Hand  HandColor           `json:"hand"`
	Cells [NumCells]CellState `json:"cells"`
}

// At returns the merged cell at (row, col).
func (m *MergedGrid) At(row, col int) CellState {
	return m.Cells[row*Cols+col]
}

// MarkedCount returns the number of positions where the hand reported pain.
func (m *MergedGrid) MarkedCount() int {
	n := 0
	for _, c := range m.Cells {
		if c.Hand != HandNone {
			n++
		}
	}
	return n
}
