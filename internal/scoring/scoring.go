// Package scoring computes the five weighted sub-scores and composite grade
// a Report surfaces to callers.
//
// Grounded on the teacher's internal/optimizer.DatabaseHints scoring and
// severity banding, and the Suggestion.String() formatting idiom, reworked
// into five independent [0, 100] sub-scores and one weighted composite
// instead of one aggregate hint score.
package scoring

import "github.com/karimalihussein/querysentinel/internal/metrics"

// Dimension names one of the five scored axes.
type Dimension string

const (
	DimensionIndexQuality Dimension = "index_quality"
	DimensionEfficiency   Dimension = "efficiency"
	DimensionScalability  Dimension = "scalability"
	DimensionExecution    Dimension = "execution"
	DimensionCost         Dimension = "cost"
)

// weights sum to 1.0 and define the composite's weighted mean.
var weights = map[Dimension]float64{
	DimensionIndexQuality: 0.25,
	DimensionEfficiency:   0.15,
	DimensionScalability:  0.25,
	DimensionExecution:    0.20,
	DimensionCost:         0.15,
}

// SubScore is one dimension's numeric score plus a human-readable rationale.
type SubScore struct {
	Score     float64
	Rationale string
}

// Result is the full scoring breakdown for one analyzed query.
type Result struct {
	Breakdown      map[Dimension]SubScore
	CompositeScore float64
	Grade          string
	Passed         bool
	HasCritical    bool
}

// Score computes the five sub-scores, the weighted composite, and the
// letter grade for m. hasCritical indicates whether any finding against m
// carried critical severity, which gates Passed independently of the score.
func Score(m metrics.Metrics, hasCritical bool) Result {
	breakdown := map[Dimension]SubScore{
		DimensionIndexQuality: scoreIndexQuality(m),
		DimensionEfficiency:   scoreEfficiency(m),
		DimensionScalability:  scoreScalability(m),
		DimensionExecution:    scoreExecution(m),
		DimensionCost:         scoreCost(m),
	}

	composite := 0.0
	for dim, weight := range weights {
		composite += breakdown[dim].Score * weight
	}

	grade := gradeFor(composite)
	return Result{
		Breakdown:      breakdown,
		CompositeScore: composite,
		Grade:          grade,
		Passed:         composite >= 70 && !hasCritical,
		HasCritical:    hasCritical,
	}
}

func scoreIndexQuality(m metrics.Metrics) SubScore {
	if m.IsIntentionalScan {
		return SubScore{100, "intentional full scan is not penalized"}
	}
	if m.HasTableScan && !m.IsIndexBacked {
		return SubScore{30, "full table scan with no index"}
	}
	if m.PrimaryAccessType == metrics.AccessIndexScan && !m.HasCoveringIndex {
		return SubScore{60, "index scan without a covering index"}
	}
	if m.IsIndexBacked && !m.HasTableScan {
		score := 100.0
		if m.HasIndexMerge {
			score -= 10
		}
		return SubScore{score, "index-backed access path"}
	}
	return SubScore{30, "access path is not index-backed"}
}

func scoreEfficiency(m metrics.Metrics) SubScore {
	if m.IsIntentionalScan {
		return SubScore{100, "intentional full scan is not penalized"}
	}
	if m.RowsReturned == 0 {
		return SubScore{0, "query returned no rows"}
	}
	examined := m.RowsExamined
	if examined < 1 {
		examined = 1
	}
	ratio := float64(m.RowsReturned) / float64(examined)
	if ratio > 1 {
		ratio = 1
	}
	score := 100 * ratio
	if score < 10 {
		score = 10
	}
	return SubScore{score, "rows returned relative to rows examined"}
}

func scoreScalability(m metrics.Metrics) SubScore {
	if m.IsIntentionalScan {
		return SubScore{100, "intentional full scan is not penalized"}
	}
	switch m.Complexity {
	case metrics.ComplexityConstant:
		return SubScore{100, "O(1) access"}
	case metrics.ComplexityLogN:
		return SubScore{90, "O(log n) access"}
	case metrics.ComplexityLogNPlusK:
		return SubScore{80, "O(log n + k) access"}
	case metrics.ComplexityLinear:
		return SubScore{50, "O(n) access"}
	case metrics.ComplexityLinearLogN:
		return SubScore{30, "O(n log n) access"}
	case metrics.ComplexityQuadratic:
		return SubScore{10, "O(n²) access"}
	case metrics.ComplexityCubic:
		return SubScore{0, "O(n³) access"}
	default:
		return SubScore{50, "complexity unknown"}
	}
}

func scoreExecution(m metrics.Metrics) SubScore {
	t := m.ExecutionTimeMS
	switch {
	case t <= 1:
		return SubScore{100, "execution under 1ms"}
	case t <= 10:
		return SubScore{95, "execution under 10ms"}
	case t <= 50:
		return SubScore{85, "execution under 50ms"}
	case t <= 100:
		return SubScore{70, "execution under 100ms"}
	case t <= 500:
		return SubScore{50, "execution under 500ms"}
	case t <= 1000:
		return SubScore{30, "execution under 1000ms"}
	default:
		return SubScore{10, "execution over 1000ms"}
	}
}

func scoreCost(m metrics.Metrics) SubScore {
	score := 100.0
	if m.HasTempTable {
		score -= 15
	}
	if m.HasDiskTemp {
		score -= 25
	}
	if m.HasWeedout {
		score -= 10
	}
	if m.NestedLoopDepth > 2 {
		score -= 5 * float64(m.NestedLoopDepth-2)
	}
	if score < 0 {
		score = 0
	}
	return SubScore{score, "plan-shape penalties applied"}
}

func gradeFor(composite float64) string {
	switch {
	case composite >= 95:
		return "A+"
	case composite >= 90:
		return "A"
	case composite >= 85:
		return "B+"
	case composite >= 80:
		return "B"
	case composite >= 70:
		return "C"
	case composite >= 60:
		return "D"
	default:
		return "F"
	}
}
