package disease

import (
	"encoding/json"
	"strings"
	"testing"

	"shoulder-grid/internal/grid"
)

// patternJSON renders an 81-entry grid_color array with the given
// colors at the given indices and null elsewhere.
func patternJSON(colors map[int]string) string {
	cells := make([]string, grid.NumCells)
	for i := range cells {
		cells[i] = "null"
	}
	for idx, c := range colors {
		cells[idx] = `"` + c + `"`
	}
	return "[" + strings.Join(cells, ",") + "]"
}

func TestParseCatalog(t *testing.T) {
	data := `[
		{"id": 1, "name_en": "Rotator cuff tear", "name_zh": "旋轉肌袖撕裂",
		 "symptoms": ["夜間疼痛"], "grid_color": ` + patternJSON(map[int]string{0: "RED", 1: "YELLOW", 2: "BLUE"}) + `},
		{"id": 2, "name_en": "Adhesive capsulitis", "name_zh": "沾黏性肩關節囊炎",
		 "grid_color": ` + patternJSON(nil) + `}
	]`

	cat, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("expected 2 diseases, got %d", cat.Len())
	}

	d := cat.Diseases()[0]
	if d.NameEN != "Rotator cuff tear" || d.ID != 1 {
		t.Fatalf("unexpected first disease: %+v", d)
	}
	if d.Pattern[0] != PatternRed || d.Pattern[1] != PatternYellow || d.Pattern[2] != PatternBlue {
		t.Fatal("pattern colors not decoded")
	}
	if d.Pattern[3] != PatternNone {
		t.Fatal("null cell should decode to PatternNone")
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"empty array", `[]`},
		{"no name", `[{"id": 1, "grid_color": ` + patternJSON(nil) + `}]`},
		{"short pattern", `[{"id": 1, "name_en": "X", "grid_color": ["RED"]}]`},
		{"unknown color", `[{"id": 1, "name_en": "X", "grid_color": ` +
			strings.Replace(patternJSON(map[int]string{0: "RED"}), `"RED"`, `"PURPLE"`, 1) + `}]`},
		{"not json", `{`},
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c.data)); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestLoadShippedCatalog(t *testing.T) {
	cat, err := Load("../../data/diseases.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Len() < 10 {
		t.Fatalf("expected a full catalogue, got %d entries", cat.Len())
	}
	for _, d := range cat.Diseases() {
		if d.NameEN == "" {
			t.Fatalf("disease %d has no English name", d.ID)
		}
		// Every entry must predict pain somewhere.
		weighted := 0
		for _, p := range d.Pattern {
			weighted += p.Weight()
		}
		if weighted == 0 {
			t.Fatalf("disease %q has an empty pattern", d.NameEN)
		}
	}
}

func TestPatternColorRoundTrip(t *testing.T) {
	for _, c := range []PatternColor{PatternNone, PatternBlue, PatternYellow, PatternRed} {
		data, err := json.Marshal(c)
		if err != nil {
			t.Fatalf("marshal %v: %v", c, err)
		}
		var back PatternColor
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != c {
			t.Fatalf("round trip %v -> %s -> %v", c, data, back)
		}
	}
}

func TestPatternColorWeights(t *testing.T) {
	want := map[PatternColor]int{PatternRed: 3, PatternYellow: 2, PatternBlue: 1, PatternNone: 0}
	for c, w := range want {
		if got := c.Weight(); got != w {
			t.Fatalf("%v weight %d, want %d", c, got, w)
		}
	}
}
