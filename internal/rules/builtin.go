package rules

import (
	"fmt"

	"github.com/karimalihussein/querysentinel/internal/metrics"
)

// FullTableScanRule fires when the plan performs a table scan that is not
// an intentional full-table read.
type FullTableScanRule struct {
	criticalRowsExamined int64
}

func NewFullTableScanRule(criticalRowsExamined int64) *FullTableScanRule {
	return &FullTableScanRule{criticalRowsExamined: criticalRowsExamined}
}

func (r *FullTableScanRule) Evaluate(m metrics.Metrics) *Finding {
	if !m.HasTableScan || m.IsIntentionalScan {
		return nil
	}
	severity := SeverityWarning
	if m.RowsExamined >= r.criticalRowsExamined {
		severity = SeverityCritical
	}
	return &Finding{
		Category:       "full_table_scan",
		Severity:       severity,
		Title:          "Full table scan",
		Description:    fmt.Sprintf("Query scans the entire table (%d rows examined) without using an index.", m.RowsExamined),
		Recommendation: "Add an index covering the query's filter and join columns.",
	}
}

// NoIndexRule fires when no index backs the access path for a query that
// reads data and is not an intentional scan or a single-row lookup.
type NoIndexRule struct{}

func NewNoIndexRule() *NoIndexRule { return &NoIndexRule{} }

func (r *NoIndexRule) Evaluate(m metrics.Metrics) *Finding {
	if m.IsIndexBacked || len(m.IndexesUsed) > 0 {
		return nil
	}
	if len(m.TablesAccessed) == 0 || m.IsIntentionalScan || m.IsZeroRowConst {
		return nil
	}
	if m.PrimaryAccessType == metrics.AccessConstRow || m.PrimaryAccessType == metrics.AccessSingleRow {
		return nil
	}
	return &Finding{
		Category:       "no_index",
		Severity:       SeverityCritical,
		Title:          "No index backs this query",
		Description:    "None of the accessed tables are read through an index.",
		Recommendation: "Create an index on the predicate and join columns this query filters by.",
	}
}

// TempTableRule fires when the plan materializes a temporary table, a
// heavier penalty if that table spilled to disk.
type TempTableRule struct{}

func NewTempTableRule() *TempTableRule { return &TempTableRule{} }

func (r *TempTableRule) Evaluate(m metrics.Metrics) *Finding {
	if !m.HasTempTable {
		return nil
	}
	severity := SeverityWarning
	desc := "Query materializes a temporary table in memory."
	if m.HasDiskTemp {
		severity = SeverityCritical
		desc = "Query materializes a temporary table that spills to disk."
	}
	return &Finding{
		Category:       "temp_table",
		Severity:       severity,
		Title:          "Temporary table materialization",
		Description:    desc,
		Recommendation: "Add an index to satisfy GROUP BY/ORDER BY/DISTINCT without a temporary structure.",
	}
}

// WeedoutRule fires when the optimizer uses a duplicate-weedout strategy,
// signaling a semi-join the planner could not simplify.
type WeedoutRule struct{}

func NewWeedoutRule() *WeedoutRule { return &WeedoutRule{} }

func (r *WeedoutRule) Evaluate(m metrics.Metrics) *Finding {
	if !m.HasWeedout {
		return nil
	}
	return &Finding{
		Category:       "weedout",
		Severity:       SeverityWarning,
		Title:          "Duplicate weedout strategy",
		Description:    "Optimizer applies a duplicate-elimination pass over a semi-join.",
		Recommendation: "Consider rewriting the subquery as a JOIN with explicit de-duplication, or add a covering index.",
	}
}

// DeepNestedLoopRule fires when nested loop depth meets or exceeds a
// threshold, escalating to critical two levels deeper.
type DeepNestedLoopRule struct {
	threshold int
}

func NewDeepNestedLoopRule(threshold int) *DeepNestedLoopRule {
	return &DeepNestedLoopRule{threshold: threshold}
}

func (r *DeepNestedLoopRule) Evaluate(m metrics.Metrics) *Finding {
	if m.NestedLoopDepth < r.threshold {
		return nil
	}
	severity := SeverityWarning
	if m.NestedLoopDepth >= r.threshold+2 {
		severity = SeverityCritical
	}
	return &Finding{
		Category:       "deep_nested_loop",
		Severity:       severity,
		Title:          "Deep nested loop join",
		Description:    fmt.Sprintf("Query joins through %d nested loop levels.", m.NestedLoopDepth),
		Recommendation: "Reduce the number of joined tables or restructure the join order.",
	}
}

// IndexMergeRule fires whenever the plan uses an index-merge strategy,
// which is often cheaper through a single composite index instead.
type IndexMergeRule struct{}

func NewIndexMergeRule() *IndexMergeRule { return &IndexMergeRule{} }

func (r *IndexMergeRule) Evaluate(m metrics.Metrics) *Finding {
	if !m.HasIndexMerge {
		return nil
	}
	return &Finding{
		Category:       "index_merge",
		Severity:       SeverityWarning,
		Title:          "Index merge strategy in use",
		Description:    "Optimizer unions or intersects multiple single-column indexes.",
		Recommendation: "A single composite index covering these columns is usually cheaper than merging separate indexes.",
	}
}

// StaleStatsRule fires when any per-table row estimate diverges sharply
// from the actual row count, a sign the optimizer's statistics are stale:
// either |actual-estimated|/actual or actual/estimated exceeds driftRatio.
type StaleStatsRule struct {
	driftRatio float64
}

func NewStaleStatsRule(driftRatio float64) *StaleStatsRule {
	return &StaleStatsRule{driftRatio: driftRatio}
}

func (r *StaleStatsRule) Evaluate(m metrics.Metrics) *Finding {
	for _, est := range m.PerTableEstimates {
		if est.ActualRows == 0 {
			continue
		}
		diff := est.ActualRows - est.EstimatedRows
		if diff < 0 {
			diff = -diff
		}
		ratio := float64(diff) / float64(max64(est.ActualRows, 1))
		growth := float64(est.ActualRows) / float64(max64(est.EstimatedRows, 1))
		if ratio > r.driftRatio || growth > r.driftRatio {
			return &Finding{
				Category:    "stale_stats",
				Severity:    SeverityWarning,
				Title:       "Optimizer statistics appear stale",
				Description: fmt.Sprintf("Table %q: estimated %d rows, actual %d.", est.Table, est.EstimatedRows, est.ActualRows),
				Recommendation: "Run ANALYZE (or the dialect's statistics-refresh command) on this table.",
			}
		}
	}
	return nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// LimitIneffectiveRule fires when a query returns few rows but examines
// vastly more, without an early-termination plan step — a sign a LIMIT is
// not being satisfied through an index.
type LimitIneffectiveRule struct {
	maxRowsReturned    int64
	examinedMultiplier int64
}

func NewLimitIneffectiveRule(maxRowsReturned, examinedMultiplier int64) *LimitIneffectiveRule {
	return &LimitIneffectiveRule{maxRowsReturned: maxRowsReturned, examinedMultiplier: examinedMultiplier}
}

func (r *LimitIneffectiveRule) Evaluate(m metrics.Metrics) *Finding {
	if m.HasEarlyTermination {
		return nil
	}
	if m.RowsReturned > r.maxRowsReturned {
		return nil
	}
	if m.RowsReturned == 0 {
		return nil
	}
	if m.RowsExamined < r.examinedMultiplier*m.RowsReturned {
		return nil
	}
	return &Finding{
		Category:       "limit_ineffective",
		Severity:       SeverityWarning,
		Title:          "LIMIT is not pruning work",
		Description:    fmt.Sprintf("Query examines %d rows to return %d.", m.RowsExamined, m.RowsReturned),
		Recommendation: "Add an index matching the ORDER BY/WHERE clause so LIMIT can stop early.",
	}
}

// QuadraticComplexityRule fires when the dominant complexity class is
// quadratic or worse and the loop count is large enough to matter.
type QuadraticComplexityRule struct {
	minLoops int64
}

func NewQuadraticComplexityRule(minLoops int64) *QuadraticComplexityRule {
	return &QuadraticComplexityRule{minLoops: minLoops}
}

func (r *QuadraticComplexityRule) Evaluate(m metrics.Metrics) *Finding {
	if m.Complexity != metrics.ComplexityQuadratic && m.Complexity != metrics.ComplexityCubic {
		return nil
	}
	if m.MaxLoops < r.minLoops {
		return nil
	}
	return &Finding{
		Category:       "quadratic_complexity",
		Severity:       SeverityCritical,
		Title:          "Quadratic or worse complexity",
		Description:    fmt.Sprintf("Dominant access path is %s with up to %d loop iterations.", m.Complexity, m.MaxLoops),
		Recommendation: "Restructure the join to avoid a nested loop over unindexed rows at this scale.",
	}
}
