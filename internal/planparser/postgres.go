package planparser

import (
	"encoding/json"
	"strings"

	"github.com/karimalihussein/querysentinel/internal/metrics"
)

// postgresNodeAccess maps a PostgreSQL EXPLAIN "Node Type" to the same
// canonical access-type/complexity vocabulary tabular.go uses for MySQL, so
// the two dialects' output is comparable downstream.
var postgresNodeAccess = map[string]struct {
	access     metrics.AccessType
	complexity metrics.Complexity
	indexed    bool
}{
	"Seq Scan":         {metrics.AccessTableScan, metrics.ComplexityLinear, false},
	"Index Scan":       {metrics.AccessIndexLookup, metrics.ComplexityLogN, true},
	"Index Only Scan":  {metrics.AccessIndexLookup, metrics.ComplexityLogN, true},
	"Bitmap Heap Scan": {metrics.AccessIndexRangeScan, metrics.ComplexityLogNPlusK, true},
	"Bitmap Index Scan": {metrics.AccessIndexRangeScan, metrics.ComplexityLogNPlusK, true},
}

// parsePostgresJSON decodes a `EXPLAIN (FORMAT JSON)` result, which is a
// JSON array with one {"Plan": {...}} element per statement.
func parsePostgresJSON(raw []byte) (metrics.Metrics, error) {
	var docs []map[string]interface{}
	if err := json.Unmarshal(raw, &docs); err != nil {
		var single map[string]interface{}
		if err2 := json.Unmarshal(raw, &single); err2 != nil {
			return metrics.Metrics{}, err
		}
		docs = []map[string]interface{}{single}
	}

	m := metrics.New()
	for _, doc := range docs {
		if plan, ok := doc["Plan"].(map[string]interface{}); ok {
			walkPostgresPlan(&m, plan, 0)
		}
	}
	return m, nil
}

func walkPostgresPlan(m *metrics.Metrics, node map[string]interface{}, depth int) {
	nodeType, _ := node["Node Type"].(string)

	if nodeType == "Nested Loop" {
		depth++
	}
	if depth > m.NestedLoopDepth {
		m.NestedLoopDepth = depth
	}

	if relation, ok := node["Relation Name"].(string); ok && relation != "" {
		if !containsString(m.TablesAccessed, relation) {
			m.TablesAccessed = append(m.TablesAccessed, relation)
		}
		applyPostgresTable(m, node, nodeType, relation)
	}

	if indexName, ok := node["Index Name"].(string); ok && indexName != "" {
		if !containsString(m.IndexesUsed, indexName) {
			m.IndexesUsed = append(m.IndexesUsed, indexName)
		}
		if nodeType == "Index Only Scan" {
			m.HasCoveringIndex = true
		}
	}

	if nodeType == "Sort" {
		m.HasFilesort = true
		if method, _ := node["Sort Method"].(string); strings.Contains(strings.ToLower(method), "external") {
			m.HasDiskTemp = true
			m.HasTempTable = true
		}
	}
	if nodeType == "Hash" || nodeType == "Materialize" {
		m.HasTempTable = true
	}
	if nodeType == "BitmapAnd" || nodeType == "BitmapOr" {
		m.HasIndexMerge = true
	}

	if rows, ok := toInt64(node["Actual Rows"]); ok {
		m.RowsReturned = rows
	}
	if loops, ok := toInt64(node["Actual Loops"]); ok && loops > m.MaxLoops {
		m.MaxLoops = loops
	}

	if children, ok := node["Plans"].([]interface{}); ok {
		for _, entry := range children {
			if child, ok := entry.(map[string]interface{}); ok {
				walkPostgresPlan(m, child, depth)
			}
		}
	}
}

func applyPostgresTable(m *metrics.Metrics, node map[string]interface{}, nodeType, relation string) {
	estimate := metrics.TableEstimate{Table: relation}
	if planRows, ok := toInt64(node["Plan Rows"]); ok {
		estimate.EstimatedRows = planRows
		m.RowsExamined += planRows
	}
	if actualRows, ok := toInt64(node["Actual Rows"]); ok {
		estimate.ActualRows = actualRows
	}
	if loops, ok := toInt64(node["Actual Loops"]); ok {
		estimate.Loops = loops
	}
	m.PerTableEstimates = append(m.PerTableEstimates, estimate)

	mapping, ok := postgresNodeAccess[nodeType]
	if !ok {
		return
	}
	if m.PrimaryAccessType == metrics.AccessUnknown || rankWorse(mapping.access, m.PrimaryAccessType) {
		m.PrimaryAccessType = mapping.access
		if mapping.complexity.Rank() > m.Complexity.Rank() {
			m.Complexity = mapping.complexity
		}
		m.IsIndexBacked = mapping.indexed
	}
	if nodeType == "Seq Scan" {
		m.HasTableScan = true
	}
}
