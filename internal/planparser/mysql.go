package planparser

import (
	"encoding/json"
	"strings"

	"github.com/karimalihussein/querysentinel/internal/metrics"
)

// parseMySQLJSON decodes a MySQL EXPLAIN FORMAT=JSON tree. The tree is
// walked generically (map[string]interface{}) rather than into a fixed
// struct, since MySQL's EXPLAIN shape varies across node kinds
// (query_block, nested_loop, grouping_operation, ordering_operation,
// duplicates_removal) and server versions add fields freely.
func parseMySQLJSON(raw []byte) (metrics.Metrics, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return metrics.Metrics{}, err
	}

	m := metrics.New()
	queryBlock, _ := doc["query_block"].(map[string]interface{})
	if queryBlock == nil {
		return m, nil
	}

	walkMySQLBlock(&m, queryBlock, 0)
	return m, nil
}

// walkMySQLBlock recurses through one query_block-shaped node, folding
// every "table" access it finds into m and tracking nested_loop depth.
func walkMySQLBlock(m *metrics.Metrics, node map[string]interface{}, depth int) {
	if depth > m.NestedLoopDepth {
		m.NestedLoopDepth = depth
	}

	if table, ok := node["table"].(map[string]interface{}); ok {
		applyMySQLTable(m, table)
	}

	if nestedLoop, ok := node["nested_loop"].([]interface{}); ok {
		for _, entry := range nestedLoop {
			if child, ok := entry.(map[string]interface{}); ok {
				walkMySQLBlock(m, child, depth+1)
			}
		}
	}

	if grouping, ok := node["grouping_operation"].(map[string]interface{}); ok {
		if usingTemp, _ := grouping["using_temporary_table"].(bool); usingTemp {
			m.HasTempTable = true
		}
		if usingFilesort, _ := grouping["using_filesort"].(bool); usingFilesort {
			m.HasFilesort = true
		}
		walkMySQLBlock(m, grouping, depth)
	}

	if ordering, ok := node["ordering_operation"].(map[string]interface{}); ok {
		if usingFilesort, _ := ordering["using_filesort"].(bool); usingFilesort {
			m.HasFilesort = true
		}
		walkMySQLBlock(m, ordering, depth)
	}

	if dedup, ok := node["duplicates_removal"].(map[string]interface{}); ok {
		if usingTemp, _ := dedup["using_temporary_table"].(bool); usingTemp {
			m.HasTempTable = true
		}
		walkMySQLBlock(m, dedup, depth)
	}
}

// applyMySQLTable folds one "table" node's access type, index usage, and
// row estimates into m, following the same canonical mapping tabular.go
// uses so JSON and tabular EXPLAIN agree on access-type classification.
func applyMySQLTable(m *metrics.Metrics, table map[string]interface{}) {
	tableName, _ := table["table_name"].(string)
	if tableName != "" && !containsString(m.TablesAccessed, tableName) {
		m.TablesAccessed = append(m.TablesAccessed, tableName)
	}

	accessType, _ := table["access_type"].(string)
	m.MySQLAccessType = accessType

	estimate := metrics.TableEstimate{Table: tableName}
	if rows, ok := toInt64(table["rows_examined_per_scan"]); ok {
		estimate.EstimatedRows = rows
		m.RowsExamined += rows
		if rows > m.MaxLoops {
			m.MaxLoops = rows
		}
	}
	if rows, ok := toInt64(table["rows_produced_per_join"]); ok {
		m.RowsReturned += rows
	}
	m.PerTableEstimates = append(m.PerTableEstimates, estimate)

	if usingIndex, _ := table["using_index"].(bool); usingIndex {
		m.HasCoveringIndex = true
	}

	if key, _ := table["key"].(string); key != "" && !containsString(m.IndexesUsed, key) {
		m.IndexesUsed = append(m.IndexesUsed, key)
	}

	if mapping, ok := tabularAccessMapping[accessType]; ok {
		if accessType == "const" && isZeroRowConst(table) {
			m.IsZeroRowConst = true
			m.PrimaryAccessType = metrics.AccessZeroRowConst
			m.Complexity = metrics.ComplexityConstant
			m.IsIndexBacked = true
		} else if m.PrimaryAccessType == metrics.AccessUnknown || rankWorse(mapping.access, m.PrimaryAccessType) {
			m.PrimaryAccessType = mapping.access
			if mapping.complexity.Rank() > m.Complexity.Rank() {
				m.Complexity = mapping.complexity
			}
			m.IsIndexBacked = mapping.indexed
		}
		if accessType == "index_merge" {
			m.HasIndexMerge = true
		}
		if accessType == "ALL" {
			m.HasTableScan = true
		}
	}
}

func isZeroRowConst(table map[string]interface{}) bool {
	msg, _ := table["message"].(string)
	return strings.Contains(strings.ToLower(msg), "no matching row")
}

// rankWorse reports whether candidate is a more expensive access type than
// current — used when multiple tables are scanned in one query block so the
// dominant (worst) access type wins PrimaryAccessType.
func rankWorse(candidate, current metrics.AccessType) bool {
	rank := map[metrics.AccessType]int{
		metrics.AccessConstRow:       0,
		metrics.AccessZeroRowConst:   0,
		metrics.AccessSingleRow:      1,
		metrics.AccessIndexLookup:    2,
		metrics.AccessIndexRangeScan: 3,
		metrics.AccessIndexScan:      4,
		metrics.AccessTableScan:      5,
	}
	return rank[candidate] > rank[current]
}
