package metrics

import (
	"reflect"
	"testing"
)

func TestValidateConsistency_IndexBackedInvariant(t *testing.T) {
	m := Metrics{PrimaryAccessType: AccessIndexLookup, IsIndexBacked: false}
	got, repairs := ValidateConsistency(m)
	if !got.IsIndexBacked {
		t.Error("expected is_index_backed repaired to true")
	}
	if len(repairs) == 0 {
		t.Error("expected a repair to be logged")
	}
}

func TestValidateConsistency_ZeroRowConstInvariant(t *testing.T) {
	m := Metrics{IsZeroRowConst: true, Complexity: ComplexityLinear}
	got, _ := ValidateConsistency(m)
	if got.Complexity != ComplexityConstant {
		t.Errorf("complexity = %v, want O(1)", got.Complexity)
	}
	if !got.IsIndexBacked {
		t.Error("expected is_index_backed true for zero-row const")
	}
}

func TestValidateConsistency_ZeroRowsExaminedInvariant(t *testing.T) {
	m := Metrics{RowsExamined: 0, HasTableScan: false, Complexity: ComplexityLinear}
	got, _ := ValidateConsistency(m)
	if got.Complexity != ComplexityConstant {
		t.Errorf("complexity = %v, want O(1)", got.Complexity)
	}
}

func TestValidateConsistency_Idempotent(t *testing.T) {
	m := Metrics{PrimaryAccessType: AccessTableScan, HasTableScan: true, RowsExamined: 100, Complexity: ComplexityLinear}
	once, _ := ValidateConsistency(m)
	twice, repairs2 := ValidateConsistency(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("ValidateConsistency not idempotent: %+v != %+v", once, twice)
	}
	if len(repairs2) != 0 {
		t.Errorf("second pass should produce no repairs, got %+v", repairs2)
	}
}

func TestEnrichFromExplain_EmptyRows(t *testing.T) {
	m := Metrics{RowsExamined: 5}
	got, repairs := EnrichFromExplain(m, nil)
	if !reflect.DeepEqual(got, m) {
		t.Error("empty rows must not modify metrics")
	}
	if repairs != nil {
		t.Error("empty rows must not produce repairs")
	}
}

func TestEnrichFromExplain_FillsOnlyUnsetFields(t *testing.T) {
	m := Metrics{TablesAccessed: []string{"users"}}
	rows := []map[string]interface{}{
		{"table": "orders", "rows": 100},
	}
	got, _ := EnrichFromExplain(m, rows)
	if len(got.TablesAccessed) != 1 || got.TablesAccessed[0] != "users" {
		t.Errorf("must not overwrite already-set tables_accessed, got %v", got.TablesAccessed)
	}
	if len(got.PerTableEstimates) != 1 || got.PerTableEstimates[0].Table != "orders" {
		t.Errorf("expected per_table_estimates enriched from rows, got %+v", got.PerTableEstimates)
	}
}
