package grid

import (
	"testing"

	"shoulder-grid/pkg/geometry"
)

func TestMarkColorHandMapping(t *testing.T) {
	cases := []struct {
		mark MarkColor
		want HandColor
	}{
		{MarkCyan, HandLeft},
		{MarkGreen, HandRight},
		{MarkBlue, HandNone},
		{MarkRed, HandNone},
		{MarkYellow, HandNone},
		{MarkNone, HandNone},
	}
	for _, c := range cases {
		if got := c.mark.Hand(); got != c.want {
			t.Fatalf("%v.Hand() = %v, want %v", c.mark, got, c.want)
		}
	}

	// The hand-to-mark direction inverts for real hands.
	if HandLeft.Mark() != MarkCyan || HandRight.Mark() != MarkGreen {
		t.Fatal("hand marker colors swapped")
	}
}

func TestCellStateIndex(t *testing.T) {
	if got := (CellState{Row: 0, Col: 0}).Index(); got != 0 {
		t.Fatalf("top-left index %d, want 0", got)
	}
	if got := (CellState{Row: 4, Col: 4}).Index(); got != 40 {
		t.Fatalf("center index %d, want 40", got)
	}
	if got := (CellState{Row: 8, Col: 8}).Index(); got != 80 {
		t.Fatalf("bottom-right index %d, want 80", got)
	}
}

func evenGeometry(x, y, size float64) Geometry {
	g := Geometry{
		Bounds:     geometry.RectInt{X: int(x), Y: int(y), Width: int(size), Height: int(size)},
		CellWidth:  size / Cols,
		CellHeight: size / Rows,
	}
	for i := 0; i <= Rows; i++ {
		g.HLines[i] = y + float64(i)*g.CellHeight
	}
	for i := 0; i <= Cols; i++ {
		g.VLines[i] = x + float64(i)*g.CellWidth
	}
	return g
}

func TestGeometryCellRect(t *testing.T) {
	g := evenGeometry(100, 200, 450) // 50px cells

	r := g.CellRect(0, 0)
	if r.X != 100 || r.Y != 200 || r.Width != 50 || r.Height != 50 {
		t.Fatalf("unexpected top-left rect: %+v", r)
	}

	r = g.CellRect(8, 8)
	if r.X != 500 || r.Y != 600 {
		t.Fatalf("unexpected bottom-right rect origin: (%v,%v)", r.X, r.Y)
	}
}

func denseGrid() *ParsedGrid {
	p := &ParsedGrid{}
	for i := range p.Cells {
		p.Cells[i].Row = i / Cols
		p.Cells[i].Col = i % Cols
	}
	return p
}

func TestParsedGridValidate(t *testing.T) {
	p := denseGrid()
	if err := p.Validate(); err != nil {
		t.Fatalf("empty grid should validate: %v", err)
	}

	p.Cells[10].Hand = HandLeft
	p.Cells[10].SizeClass = 3
	if err := p.Validate(); err != nil {
		t.Fatalf("marked grid should validate: %v", err)
	}

	p.Cells[10].SizeClass = 0
	if err := p.Validate(); err == nil {
		t.Fatal("marked cell without a size class should fail")
	}

	p.Cells[10].SizeClass = 6
	if err := p.Validate(); err == nil {
		t.Fatal("size class above 5 should fail")
	}

	p = denseGrid()
	p.Cells[5].Row, p.Cells[5].Col = 3, 3
	if err := p.Validate(); err == nil {
		t.Fatal("mispositioned cell should fail")
	}
}

func TestMarkedCells(t *testing.T) {
	p := denseGrid()
	p.Cells[2].Hand = HandLeft
	p.Cells[2].SizeClass = 1
	p.Cells[50].Hand = HandRight
	p.Cells[50].SizeClass = 4

	marked := p.MarkedCells()
	if len(marked) != 2 {
		t.Fatalf("got %d marked cells, want 2", len(marked))
	}
	if marked[0].Index() != 2 || marked[1].Index() != 50 {
		t.Fatalf("marked cells out of order: %d, %d", marked[0].Index(), marked[1].Index())
	}
}

func TestMergedGridMarkedCount(t *testing.T) {
	m := &MergedGrid{Hand: HandLeft}
	if got := m.MarkedCount(); got != 0 {
		t.Fatalf("empty grid count %d, want 0", got)
	}
	m.Cells[0].Hand = HandLeft
	m.Cells[80].Hand = HandLeft
	if got := m.MarkedCount(); got != 2 {
		t.Fatalf("count %d, want 2", got)
	}
	if got := m.At(0, 0).Hand; got != HandLeft {
		t.Fatalf("At(0,0).Hand = %v, want LEFT", got)
	}
}
