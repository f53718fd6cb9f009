// Package disease holds the reference disease catalogue and scores
// merged grids against it.
package disease

import (
	"encoding/json"
	"fmt"
	"os"

	"shoulder-grid/internal/grid"
)

// PatternColor is one entry of a disease's expected-severity pattern.
// This is an independent color space from hand markers: RED/YELLOW/BLUE
// encode expected pain severity at a position, never which hand.
type PatternColor int

const (
	PatternNone PatternColor = iota
	PatternBlue
	PatternYellow
	PatternRed
)

func (c PatternColor) String() string {
	switch c {
	case PatternBlue:
		return "BLUE"
	case PatternYellow:
		return "YELLOW"
	case PatternRed:
		return "RED"
	default:
		return "NONE"
	}
}

// Weight is the severity weight used in scoring. Whether these exact
// values are clinically authoritative is undocumented; they are kept
// as the app has always used them.
func (c PatternColor) Weight() int {
	switch c {
	case PatternRed:
		return 3
	case PatternYellow:
		return 2
	case PatternBlue:
		return 1
	default:
		return 0
	}
}

// UnmarshalJSON accepts "RED"/"YELLOW"/"BLUE" or null.
func (c *PatternColor) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = PatternNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "RED":
		*c = PatternRed
	case "YELLOW":
		*c = PatternYellow
	case "BLUE":
		*c = PatternBlue
	case "", "NONE":
		*c = PatternNone
	default:
		return fmt.Errorf("unknown pattern color %q", s)
	}
	return nil
}

// MarshalJSON writes the color name, or null for no expectation.
func (c PatternColor) MarshalJSON() ([]byte, error) {
	if c == PatternNone {
		return []byte("null"), nil
	}
	return json.Marshal(c.String())
}

// Disease is one reference entry: a named condition and the 81-cell
// pattern of where, and how severely, it typically presents.
type Disease struct {
	ID       int                         `json:"id"`
	NameEN   string                      `json:"name_en"`
	NameZH   string                      `json:"name_zh"`
	Symptoms []string                    `json:"symptoms,omitempty"`
	Pattern  [grid.NumCells]PatternColor `json:"grid_color"`
}

// Catalog is the process-wide reference table. It is loaded once at
// startup and never mutated, so concurrent scoring calls share it
// without locking.
type Catalog struct {
	diseases []Disease
}

// Load reads the disease catalogue from a JSON file. Any failure here
// is fatal to the caller: scoring cannot run without reference data.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read disease catalogue: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalogue from raw JSON and validates every entry
// carries a name and a dense 81-cell pattern.
func Parse(data []byte) (*Catalog, error) {
	type rawDisease struct {
		ID       int            `json:"id"`
		NameEN   string         `json:"name_en"`
		NameZH   string         `json:"name_zh"`
		Symptoms []string       `json:"symptoms"`
		Pattern  []PatternColor `json:"grid_color"`
	}

	var raw []rawDisease
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse disease catalogue: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("disease catalogue is empty")
	}

	diseases := make([]Disease, len(raw))
	for i, r := range raw {
		if r.NameEN == "" && r.NameZH == "" {
			return nil, fmt.Errorf("disease %d has no name", i)
		}
		if len(r.Pattern) != grid.NumCells {
			return nil, fmt.Errorf("disease %q: pattern has %d cells, want %d",
				r.NameEN, len(r.Pattern), grid.NumCells)
		}
		diseases[i] = Disease{ID: r.ID, NameEN: r.NameEN, NameZH: r.NameZH, Symptoms: r.Symptoms}
		copy(diseases[i].Pattern[:], r.Pattern)
	}
	return &Catalog{diseases: diseases}, nil
}

// Len returns the number of catalogue entries.
func (c *Catalog) Len() int {
	return len(c.diseases)
}

// Diseases returns the catalogue entries in insertion order.
func (c *Catalog) Diseases() []Disease {
	return c.diseases
}
