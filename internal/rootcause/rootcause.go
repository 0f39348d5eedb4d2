// Package rootcause classifies the dominant cause(s) behind a set of
// findings and suppresses findings that a higher-level cause already
// explains, so a report leads with one actionable recommendation instead of
// a pile of overlapping symptoms.
//
// New code: the teacher has no single analog for cross-finding
// suppression, but the approach is grounded on its
// categorizeIndexRecommendation / suppression-by-reason-string idiom
// (internal/optimizer), generalized into a typed Cause enum and an explicit
// subsumption table instead of ad hoc string comparisons.
package rootcause

import (
	"github.com/karimalihussein/querysentinel/internal/metrics"
	"github.com/karimalihussein/querysentinel/internal/rules"
)

// Cause is a tagged explanation for why a query performs poorly.
type Cause string

const (
	CauseIntentionalScan Cause = "intentional_scan"
	CauseMissingIndex    Cause = "missing_index"
	CauseBadJoinOrder    Cause = "bad_join_order"
	CauseSortSpill       Cause = "sort_spill"
	CauseQuadraticBlowup Cause = "quadratic_blowup"
)

// priorityOrder is the order in which causes are considered for the top
// recommendation, from most to least urgent.
var priorityOrder = []Cause{
	CauseQuadraticBlowup,
	CauseSortSpill,
	CauseBadJoinOrder,
	CauseMissingIndex,
	CauseIntentionalScan,
}

// Classify derives the set of root causes present given m and the findings
// that fired against it.
func Classify(m metrics.Metrics, findings []rules.Finding) []Cause {
	has := func(category string) bool {
		for _, f := range findings {
			if f.Category == category {
				return true
			}
		}
		return false
	}

	var causes []Cause
	if m.IsIntentionalScan {
		causes = append(causes, CauseIntentionalScan)
	}
	if has("no_index") && !m.IsIntentionalScan {
		causes = append(causes, CauseMissingIndex)
	}
	if has("deep_nested_loop") && has("stale_stats") {
		causes = append(causes, CauseBadJoinOrder)
	}
	if has("temp_table") && m.HasFilesort {
		causes = append(causes, CauseSortSpill)
	}
	if has("quadratic_complexity") {
		causes = append(causes, CauseQuadraticBlowup)
	}
	return causes
}

// SuppressByRootCause removes findings that a stronger root cause already
// explains. intentional_scan suppresses no_index and full_table_scan but
// preserves anti_pattern findings (e.g. SELECT *). missing_index suppresses
// full_table_scan, keeping only the more actionable no_index.
func SuppressByRootCause(findings []rules.Finding, causes []Cause) []rules.Finding {
	suppress := make(map[string]bool)
	for _, c := range causes {
		switch c {
		case CauseIntentionalScan:
			suppress["no_index"] = true
			suppress["full_table_scan"] = true
		case CauseMissingIndex:
			suppress["full_table_scan"] = true
		}
	}

	var kept []rules.Finding
	for _, f := range findings {
		if suppress[f.Category] {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// Recommendation is the single top-level recommendation derived from the
// causes present, in priority order.
type Recommendation struct {
	Cause Cause
	Text  string
}

// IdentifyTopRecommendation picks the highest-priority cause present and
// returns its canonical recommendation text. An intentional scan never
// recommends adding an index.
func IdentifyTopRecommendation(causes []Cause) Recommendation {
	present := make(map[Cause]bool, len(causes))
	for _, c := range causes {
		present[c] = true
	}

	for _, c := range priorityOrder {
		if !present[c] {
			continue
		}
		switch c {
		case CauseQuadraticBlowup:
			return Recommendation{Cause: c, Text: "Restructure the join to eliminate the quadratic nested loop before it reaches scale."}
		case CauseSortSpill:
			return Recommendation{Cause: c, Text: "Add an index to satisfy the sort/group without a temporary structure."}
		case CauseBadJoinOrder:
			return Recommendation{Cause: c, Text: "Refresh table statistics and reconsider the join order; the optimizer is working off stale estimates."}
		case CauseMissingIndex:
			return Recommendation{Cause: c, Text: "Create an index on the columns this query filters or joins by."}
		case CauseIntentionalScan:
			return Recommendation{Cause: c, Text: "You are scanning the entire dataset by design; consider LIMIT/pagination if this is user-facing."}
		}
	}

	return Recommendation{Cause: "", Text: "No dominant cause identified; review individual findings."}
}
