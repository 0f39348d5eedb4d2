package scoring

import "testing"

import "github.com/karimalihussein/querysentinel/internal/metrics"

func TestScore_IntentionalScanInvariant(t *testing.T) {
	m := metrics.Metrics{
		IsIntentionalScan: true,
		RowsExamined:      1000,
		RowsReturned:      1000,
		Complexity:        metrics.ComplexityLinear,
		ExecutionTimeMS:   0.5,
	}
	result := Score(m, false)
	if result.CompositeScore < 95 {
		t.Errorf("composite = %v, want >= 95 for pure intentional scan", result.CompositeScore)
	}
	if result.Grade != "A+" {
		t.Errorf("grade = %s, want A+", result.Grade)
	}
}

func TestScore_IntentionalScanInvariant_StaticOnly(t *testing.T) {
	m := metrics.Metrics{
		IsIntentionalScan: true,
		Complexity:        metrics.ComplexityConstant,
	}
	result := Score(m, false)
	if result.CompositeScore < 95 {
		t.Errorf("composite = %v, want >= 95 for pure intentional scan with no fetched plan", result.CompositeScore)
	}
	if result.Grade != "A+" {
		t.Errorf("grade = %s, want A+", result.Grade)
	}
}

func TestScore_TableScanPenalized(t *testing.T) {
	m := metrics.Metrics{
		HasTableScan:      true,
		IsIndexBacked:     false,
		RowsExamined:      50000,
		RowsReturned:      1,
		Complexity:        metrics.ComplexityLinear,
		ExecutionTimeMS:   200,
	}
	result := Score(m, true)
	if result.Passed {
		t.Error("expected failing result for table scan with critical finding")
	}
	if result.Breakdown[DimensionIndexQuality].Score != 30 {
		t.Errorf("index_quality = %v, want 30", result.Breakdown[DimensionIndexQuality].Score)
	}
}

func TestScore_PassingRequiresNoCritical(t *testing.T) {
	m := metrics.Metrics{
		PrimaryAccessType: metrics.AccessSingleRow,
		IsIndexBacked:     true,
		RowsExamined:      1,
		RowsReturned:      1,
		Complexity:        metrics.ComplexityConstant,
		ExecutionTimeMS:   0.2,
	}
	result := Score(m, true)
	if result.Passed {
		t.Error("critical finding must fail regardless of composite score")
	}
}

func TestScoreCost_NestedLoopPenalty(t *testing.T) {
	m := metrics.Metrics{NestedLoopDepth: 5}
	s := scoreCost(m)
	if s.Score != 100-5*3 {
		t.Errorf("cost = %v, want %v", s.Score, 100-5*3)
	}
}
