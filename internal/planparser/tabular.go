package planparser

import (
	"strings"

	"github.com/karimalihussein/querysentinel/internal/metrics"
)

// tabularAccessMapping is the canonical EXPLAIN type → (access type,
// complexity) mapping from spec.md §4.4. const/zero_row_const are
// disambiguated separately since they share the same EXPLAIN type string.
var tabularAccessMapping = map[string]struct {
	access     metrics.AccessType
	complexity metrics.Complexity
	indexed    bool
}{
	"system":      {metrics.AccessConstRow, metrics.ComplexityConstant, true},
	"const":       {metrics.AccessConstRow, metrics.ComplexityConstant, true},
	"eq_ref":      {metrics.AccessSingleRow, metrics.ComplexityConstant, true},
	"ref":         {metrics.AccessIndexLookup, metrics.ComplexityLogN, true},
	"ref_or_null": {metrics.AccessIndexLookup, metrics.ComplexityLogN, true},
	"range":       {metrics.AccessIndexRangeScan, metrics.ComplexityLogNPlusK, true},
	"index":       {metrics.AccessIndexScan, metrics.ComplexityLinear, true},
	"ALL":         {metrics.AccessTableScan, metrics.ComplexityLinear, false},
	"index_merge": {metrics.AccessIndexLookup, metrics.ComplexityLogNPlusK, true},
}

// applyTabularRow folds one EXPLAIN row into m, following the canonical
// mapping and never overriding an access type the tree parser already set.
func applyTabularRow(m metrics.Metrics, row map[string]interface{}) metrics.Metrics {
	table, _ := row["table"].(string)
	if table != "" {
		if !containsString(m.TablesAccessed, table) {
			m.TablesAccessed = append(m.TablesAccessed, table)
		}
	}

	explainType, _ := row["type"].(string)
	extra, _ := row["Extra"].(string)

	if rows, ok := toInt64(row["rows"]); ok {
		m.RowsExamined += rows
	}

	if mapping, ok := tabularAccessMapping[explainType]; ok {
		if explainType == "const" && strings.Contains(strings.ToLower(extra), "no matching row in const table") {
			m.IsZeroRowConst = true
			if m.PrimaryAccessType == metrics.AccessUnknown {
				m.PrimaryAccessType = metrics.AccessZeroRowConst
				m.Complexity = metrics.ComplexityConstant
				m.IsIndexBacked = true
			}
		} else if m.PrimaryAccessType == metrics.AccessUnknown {
			m.PrimaryAccessType = mapping.access
			m.Complexity = mapping.complexity
			m.IsIndexBacked = mapping.indexed
		}
		if explainType == "index_merge" {
			m.HasIndexMerge = true
		}
		if explainType == "ALL" {
			m.HasTableScan = true
		}
	}
	if explainType != "" {
		m.MySQLAccessType = explainType
	}

	if key, ok := row["key"].(string); ok && key != "" {
		if !containsString(m.IndexesUsed, key) {
			m.IndexesUsed = append(m.IndexesUsed, key)
		}
	}

	applyExtraTokens(&m, extra)

	return m
}

// applyExtraTokens sets plan-shape booleans from the MySQL EXPLAIN Extra
// column, handling compound strings like "Using where; Using index".
func applyExtraTokens(m *metrics.Metrics, extra string) {
	lower := strings.ToLower(extra)
	if strings.Contains(lower, "using index") {
		m.HasCoveringIndex = true
	}
	if strings.Contains(lower, "using temporary") {
		m.HasTempTable = true
	}
	if strings.Contains(lower, "using filesort") {
		m.HasFilesort = true
	}
	if strings.Contains(lower, "start temporary") || strings.Contains(lower, "end temporary") {
		m.HasWeedout = true
	}
}

func containsString(xs []string, target string) bool {
	for _, x := range xs {
		if x == target {
			return true
		}
	}
	return false
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
