package ranking

import (
	"fmt"
	"math"

	"admissions-be/internal/entity"
)

// Thresholds are fractions of the intake limit. Valid configurations satisfy
// AutoAccept <= Conditional <= Waitlist.
type Thresholds struct {
	AutoAccept  float64
	Conditional float64
	Waitlist    float64
}

// DefaultThresholds matches the standard admission policy: auto-accept the
// top 80% of the intake, conditional up to the full intake, waitlist up to
// 150% of it.
var DefaultThresholds = Thresholds{
	AutoAccept:  0.80,
	Conditional: 1.00,
	Waitlist:    1.50,
}

// Confidence is fixed per tier, not derived from the score distribution.
const (
	ConfidenceAutoAccept  = 0.95
	ConfidenceConditional = 0.85
	ConfidenceWaitlist    = 0.80
	ConfidenceRejection   = 0.90
)

// Placement is the tier assignment for one ranked applicant choice.
type Placement struct {
	Row            *entity.RankedChoice
	Recommendation string
	Confidence     float64
	Reasoning      string
}

// Summary holds per-tier counts for one engine run.
type Summary struct {
	AutoAccept       int `json:"auto_accept"`
	Conditional      int `json:"conditional"`
	Waitlist         int `json:"waitlist"`
	RejectionFlagged int `json:"rejection_flagged"`
	Total            int `json:"total"`
}

// Cutoffs are the integer rank-position boundaries for an intake limit.
type Cutoffs struct {
	AutoAccept  int
	Conditional int
	Waitlist    int
}

func ComputeCutoffs(intakeLimit int, t Thresholds) Cutoffs {
	return Cutoffs{
		AutoAccept:  int(math.Floor(float64(intakeLimit) * t.AutoAccept)),
		Conditional: int(math.Floor(float64(intakeLimit) * t.Conditional)),
		Waitlist:    int(math.Floor(float64(intakeLimit) * t.Waitlist)),
	}
}

// AssignTiers walks the snapshot in its own order (rank_position ascending)
// and assigns a capacity-bounded recommendation to each row. Pure aside from
// allocation; ledger writes belong to the caller.
func AssignTiers(rows []*entity.RankedChoice, intakeLimit int, t Thresholds) ([]Placement, Summary) {
	cutoffs := ComputeCutoffs(intakeLimit, t)
	total := len(rows)

	placements := make([]Placement, 0, total)
	var summary Summary

	for _, row := range rows {
		var tier string
		var confidence float64

		switch {
		case row.RankPosition <= cutoffs.AutoAccept:
			tier = "auto_accept"
			confidence = ConfidenceAutoAccept
			summary.AutoAccept++
		case row.RankPosition <= cutoffs.Conditional:
			tier = "conditional"
			confidence = ConfidenceConditional
			summary.Conditional++
		case row.RankPosition <= cutoffs.Waitlist:
			tier = "waitlist"
			confidence = ConfidenceWaitlist
			summary.Waitlist++
		default:
			tier = "rejection_flagged"
			confidence = ConfidenceRejection
			summary.RejectionFlagged++
		}

		placements = append(placements, Placement{
			Row:            row,
			Recommendation: tier,
			Confidence:     confidence,
			Reasoning:      fmt.Sprintf("Ranked #%d of %d with APS score %d", row.RankPosition, total, row.ApsScore),
		})
	}

	summary.Total = total
	return placements, summary
}
