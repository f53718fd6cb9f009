package calibrate

import (
	"math"
	"testing"

	"shoulder-grid/internal/grid"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeThresholds(t *testing.T) {
	// Range [0.2, 1.2]: each bucket spans 0.2.
	cal := Compute([]float64{0.2, 0.5, 0.9, 1.2})

	if cal.Degenerate {
		t.Fatal("expected non-degenerate calibration")
	}
	want := [4]float64{0.4, 0.6, 0.8, 1.0}
	got := [4]float64{cal.T1, cal.T2, cal.T3, cal.T4}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Fatalf("threshold %d: got %v, want %v", i+1, got[i], want[i])
		}
	}
}

func TestClassBuckets(t *testing.T) {
	cal := Compute([]float64{0.2, 1.2})

	cases := []struct {
		ratio float64
		want  int
	}{
		{0.2, 1},
		{0.39, 1},
		{0.41, 2},
		{0.59, 2},
		{0.7, 3},
		{0.9, 4},
		{1.01, 5},
		{1.2, 5},
	}
	for _, c := range cases {
		if got := cal.Class(c.ratio); got != c.want {
			t.Fatalf("Class(%v) = %d, want %d", c.ratio, got, c.want)
		}
	}
}

func TestComputeDegenerate(t *testing.T) {
	// Fewer than two observations.
	if cal := Compute([]float64{0.5}); !cal.Degenerate {
		t.Fatal("single ratio should be degenerate")
	}
	if cal := Compute(nil); !cal.Degenerate {
		t.Fatal("empty batch should be degenerate")
	}

	// Spread below the minimum is one effective size.
	cal := Compute([]float64{0.500, 0.505, 0.502})
	if !cal.Degenerate {
		t.Fatal("near-identical ratios should be degenerate")
	}
	for _, r := range []float64{0.1, 0.5, 0.9} {
		if got := cal.Class(r); got != 3 {
			t.Fatalf("degenerate Class(%v) = %d, want 3", r, got)
		}
	}
}

func TestApplyAssignsMarkedCellsOnly(t *testing.T) {
	p := &grid.ParsedGrid{}
	for i := range p.Cells {
		p.Cells[i].Row = i / grid.Cols
		p.Cells[i].Col = i % grid.Cols
	}
	p.Cells[0].Hand = grid.HandLeft
	p.Cells[0].SizeRatio = 0.2
	p.Cells[40].Hand = grid.HandRight
	p.Cells[40].SizeRatio = 1.2

	cal := Compute([]float64{0.2, 1.2})
	cal.Apply(p)

	if got := p.Cells[0].SizeClass; got != 1 {
		t.Fatalf("smallest marker: class %d, want 1", got)
	}
	if got := p.Cells[40].SizeClass; got != 5 {
		t.Fatalf("largest marker: class %d, want 5", got)
	}
	if got := p.Cells[1].SizeClass; got != 0 {
		t.Fatalf("unmarked cell: class %d, want 0", got)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("calibrated grid invalid: %v", err)
	}
}

func TestCollectRatios(t *testing.T) {
	a := &grid.ParsedGrid{}
	a.Cells[3].Hand = grid.HandLeft
	a.Cells[3].SizeRatio = 0.3
	b := &grid.ParsedGrid{}
	b.Cells[7].Hand = grid.HandRight
	b.Cells[7].SizeRatio = 0.8
	b.Cells[8].Hand = grid.HandLeft
	b.Cells[8].SizeRatio = 0.5

	ratios := CollectRatios([]*grid.ParsedGrid{a, b})
	want := []float64{0.3, 0.8, 0.5}
	if len(ratios) != len(want) {
		t.Fatalf("got %d ratios, want %d", len(ratios), len(want))
	}
	for i := range want {
		if !almostEqual(ratios[i], want[i]) {
			t.Fatalf("ratio %d: got %v, want %v", i, ratios[i], want[i])
		}
	}
}
