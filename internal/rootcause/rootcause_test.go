package rootcause

import (
	"testing"

	"github.com/karimalihussein/querysentinel/internal/metrics"
	"github.com/karimalihussein/querysentinel/internal/rules"
)

func TestClassify_IntentionalScan(t *testing.T) {
	m := metrics.Metrics{IsIntentionalScan: true}
	causes := Classify(m, nil)
	if len(causes) != 1 || causes[0] != CauseIntentionalScan {
		t.Fatalf("causes = %v", causes)
	}
}

func TestSuppressByRootCause_IntentionalScanKeepsAntiPattern(t *testing.T) {
	findings := []rules.Finding{
		{Category: "no_index"},
		{Category: "full_table_scan"},
		{Category: "anti_pattern"},
	}
	kept := SuppressByRootCause(findings, []Cause{CauseIntentionalScan})
	if len(kept) != 1 || kept[0].Category != "anti_pattern" {
		t.Fatalf("kept = %+v", kept)
	}
}

func TestSuppressByRootCause_MissingIndexKeepsNoIndex(t *testing.T) {
	findings := []rules.Finding{
		{Category: "no_index"},
		{Category: "full_table_scan"},
	}
	kept := SuppressByRootCause(findings, []Cause{CauseMissingIndex})
	if len(kept) != 1 || kept[0].Category != "no_index" {
		t.Fatalf("kept = %+v", kept)
	}
}

func TestIdentifyTopRecommendation_IntentionalScanNeverSuggestsIndex(t *testing.T) {
	rec := IdentifyTopRecommendation([]Cause{CauseIntentionalScan})
	if rec.Cause != CauseIntentionalScan {
		t.Fatalf("cause = %v", rec.Cause)
	}
	if contains(rec.Text, "index") {
		t.Fatalf("intentional scan recommendation must not mention index: %q", rec.Text)
	}
}

func TestIdentifyTopRecommendation_PriorityOrder(t *testing.T) {
	rec := IdentifyTopRecommendation([]Cause{CauseIntentionalScan, CauseQuadraticBlowup, CauseMissingIndex})
	if rec.Cause != CauseQuadraticBlowup {
		t.Fatalf("expected quadratic_blowup to win priority, got %v", rec.Cause)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
