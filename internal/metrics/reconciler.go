package metrics

// Repair describes one contradiction the reconciler corrected. Repairs are
// never surfaced as user-visible findings (spec §4.5); callers log them as
// internal diagnostics (error kind invariant_repair, see internal/engine).
type Repair struct {
	Field  string
	Reason string
}

// EnrichFromExplain fills only null/unset fields of m from raw EXPLAIN
// tabular rows, never overwriting a value a more specific parser (e.g. the
// MySQL/Postgres JSON tree parser) already populated. Empty rows return m
// unchanged.
//
// Grounded on the teacher's internal/core error-wrapping idiom for
// non-fatal repair bookkeeping (internal/core/errors.go), generalized here
// into a pure enrichment step with no internal/core dependency.
func EnrichFromExplain(m Metrics, rows []map[string]interface{}) (Metrics, []Repair) {
	if len(rows) == 0 {
		return m, nil
	}

	var repairs []Repair
	if len(m.PerTableEstimates) == 0 {
		for _, row := range rows {
			table, _ := row["table"].(string)
			if table == "" {
				continue
			}
			estimate := TableEstimate{Table: table}
			if rows64, ok := toInt64(row["rows"]); ok {
				estimate.EstimatedRows = rows64
			}
			m.PerTableEstimates = append(m.PerTableEstimates, estimate)
		}
		if len(m.PerTableEstimates) > 0 {
			repairs = append(repairs, Repair{Field: "per_table_estimates", Reason: "enriched from EXPLAIN rows"})
		}
	}

	if len(m.TablesAccessed) == 0 {
		for _, row := range rows {
			if table, ok := row["table"].(string); ok && table != "" {
				m.TablesAccessed = append(m.TablesAccessed, table)
			}
		}
	}

	return m, repairs
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

// ValidateConsistency enforces the invariants in spec.md §3, repairing
// contradictions in place and returning the corrected Metrics plus a log of
// what was repaired. ValidateConsistency is idempotent:
// ValidateConsistency(ValidateConsistency(m)) == ValidateConsistency(m).
func ValidateConsistency(m Metrics) (Metrics, []Repair) {
	var repairs []Repair

	// Invariant 1: non-table-scan, non-null access type implies index-backed.
	if m.PrimaryAccessType != AccessTableScan && m.PrimaryAccessType != AccessUnknown && !m.IsIndexBacked {
		m.IsIndexBacked = true
		repairs = append(repairs, Repair{
			Field:  "is_index_backed",
			Reason: "primary_access_type is neither table_scan nor null",
		})
	}

	// Invariant 2: zero-row const implies O(1) and index-backed.
	if m.IsZeroRowConst {
		if m.Complexity != ComplexityConstant {
			m.Complexity = ComplexityConstant
			repairs = append(repairs, Repair{Field: "complexity", Reason: "is_zero_row_const implies O(1)"})
		}
		if !m.IsIndexBacked {
			m.IsIndexBacked = true
			repairs = append(repairs, Repair{Field: "is_index_backed", Reason: "is_zero_row_const implies index-backed"})
		}
	}

	// Invariant 3: zero rows examined with no table scan implies O(1).
	if m.RowsExamined == 0 && !m.HasTableScan && m.Complexity != ComplexityConstant {
		m.Complexity = ComplexityConstant
		repairs = append(repairs, Repair{Field: "complexity", Reason: "rows_examined is 0 and no table scan occurred"})
	}

	// Invariant 4 (soft): rows_returned must not exceed rows_examined. We do
	// not reject the query; we flag it by capping the derived efficiency
	// input in the scoring engine instead, so we only record the repair here.
	if m.RowsReturned > m.RowsExamined && m.RowsExamined > 0 {
		repairs = append(repairs, Repair{
			Field:  "rows_returned",
			Reason: "rows_returned exceeds rows_examined (soft violation, not corrected)",
		})
	}

	// Invariant 5: intentional scans carry no filtering/joining/ordering
	// clauses. The shape parser only sets IsIntentionalScan for such
	// statements; this pass neither checks nor repairs it. What follows
	// fills in and re-derives ComplexityRisk and ComplexityLabel.
	if m.ComplexityRisk == "" {
		m.ComplexityRisk = RiskFor(m.Complexity)
	}
	if want := RiskFor(m.Complexity); m.ComplexityRisk != want {
		m.ComplexityRisk = want
		repairs = append(repairs, Repair{Field: "complexity_risk", Reason: "complexity_risk did not match complexity"})
	}
	if m.ComplexityLabel == "" {
		m.ComplexityLabel = string(m.Complexity)
	}

	return m, repairs
}
