package disease

import (
	"sort"

	"shoulder-grid/internal/grid"
)

// Severity buckets a raw score into a clinical weight.
type Severity int

const (
	SeverityHidden Severity = iota
	SeverityLight
	SeverityMild
	SeveritySerious
)

func (s Severity) String() string {
	switch s {
	case SeverityLight:
		return "LIGHT"
	case SeverityMild:
		return "MILD"
	case SeveritySerious:
		return "SERIOUS"
	default:
		return "HIDDEN"
	}
}

// classifySeverity maps a raw score to its bucket.
func classifySeverity(score int) Severity {
	switch {
	case score > 18:
		return SeveritySerious
	case score >= 9:
		return SeverityMild
	case score >= 4:
		return SeverityLight
	default:
		return SeverityHidden
	}
}

// Designation marks how a reported disease ranks clinically.
type Designation int

const (
	DesignationNone Designation = iota
	DesignationPrimary
	DesignationSecondary
)

func (d Designation) String() string {
	switch d {
	case DesignationPrimary:
		return "primary"
	case DesignationSecondary:
		return "secondary"
	default:
		return ""
	}
}

// primaryGap is the maximum score gap between rank 1 and rank 2 at
// which both are reported with equal clinical weight.
const primaryGap = 3

// DiagnosisScore is the score of one disease against one hand's grid.
type DiagnosisScore struct {
	Disease     Disease     `json:"disease"`
	RawScore    int         `json:"raw_score"`
	Severity    Severity    `json:"severity"`
	Rank        int         `json:"rank"` // 1-based, descending by score
	Designation Designation `json:"designation,omitempty"`
}

// HandResult is the ranked scoring of one hand's merged grid.
type HandResult struct {
	Hand grid.HandColor `json:"hand"`

	// Scores holds every catalogue disease ranked descending by raw
	// score, ties broken by catalogue insertion order.
	Scores []DiagnosisScore `json:"scores"`

	// Reported are the top 2 diseases with their primary/secondary
	// designation. Rank 2 is co-primary when it trails rank 1 by at
	// most primaryGap points.
	Reported []DiagnosisScore `json:"reported"`
}

// Score ranks every catalogue disease against one hand's merged grid.
//
// Per marked cell, the contribution is size_class times the weight of
// the disease's expected severity at that position; positions the
// disease does not predict contribute nothing regardless of markers.
func (c *Catalog) Score(m *grid.MergedGrid) HandResult {
	scores := make([]DiagnosisScore, len(c.diseases))
	for i, d := range c.diseases {
		raw := scoreDisease(m, &d)
		scores[i] = DiagnosisScore{
			Disease:  d,
			RawScore: raw,
			Severity: classifySeverity(raw),
		}
	}

	// Stable sort keeps catalogue order on ties, so identical input
	// always yields identical ranking.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].RawScore > scores[j].RawScore
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}

	result := HandResult{Hand: m.Hand, Scores: scores}

	if len(scores) > 0 {
		top := scores[0]
		top.Designation = DesignationPrimary
		result.Reported = append(result.Reported, top)
	}
	if len(scores) > 1 {
		second := scores[1]
		if scores[0].RawScore-second.RawScore <= primaryGap {
			second.Designation = DesignationPrimary
		} else {
			second.Designation = DesignationSecondary
		}
		result.Reported = append(result.Reported, second)
	}
	return result
}

// scoreDisease sums size_class x severity_weight over the 81 positions.
func scoreDisease(m *grid.MergedGrid, d *Disease) int {
	score := 0
	for i, cell := range m.Cells {
		if cell.Hand == grid.HandNone {
			continue
		}
		score += cell.SizeClass * d.Pattern[i].Weight()
	}
	return score
}
