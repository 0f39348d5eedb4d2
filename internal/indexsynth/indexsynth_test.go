package indexsynth

import (
	"testing"

	_ "github.com/karimalihussein/querysentinel/internal/dialects"
)

func TestSynthesize_IntentionalScanSuppressed(t *testing.T) {
	proposals := Synthesize("SELECT id FROM users", "users", true, "mysql")
	if proposals != nil {
		t.Fatalf("expected no proposals for intentional scan, got %+v", proposals)
	}
}

func TestSynthesize_EqualityColumn(t *testing.T) {
	proposals := Synthesize("SELECT * FROM users WHERE email = ?", "users", false, "mysql")
	if len(proposals) != 1 {
		t.Fatalf("expected one proposal, got %+v", proposals)
	}
	if len(proposals[0].Columns) != 1 || proposals[0].Columns[0] != "email" {
		t.Errorf("columns = %v, want [email]", proposals[0].Columns)
	}
	if proposals[0].SuggestedDDL == "" {
		t.Error("expected non-empty DDL")
	}
}

func TestSynthesize_EqualityBeforeRangeBeforeSort(t *testing.T) {
	sql := "SELECT * FROM orders WHERE status = ? AND created_at > ? ORDER BY created_at"
	proposals := Synthesize(sql, "orders", false, "postgres")
	if len(proposals) != 1 {
		t.Fatalf("expected one proposal, got %+v", proposals)
	}
	cols := proposals[0].Columns
	if len(cols) < 2 || cols[0] != "status" {
		t.Errorf("expected equality column first, got %v", cols)
	}
}

func TestSynthesize_AtMostOneRangeColumn(t *testing.T) {
	sql := "SELECT * FROM orders WHERE amount > ? AND created_at > ?"
	proposals := Synthesize(sql, "orders", false, "sqlite")
	if len(proposals) != 1 {
		t.Fatalf("expected one proposal, got %+v", proposals)
	}
	rangeCount := 0
	for _, c := range proposals[0].Columns {
		if c == "amount" || c == "created_at" {
			rangeCount++
		}
	}
	if rangeCount != 1 {
		t.Errorf("expected exactly one range column kept, got %d (%v)", rangeCount, proposals[0].Columns)
	}
}

func TestSynthesize_UnknownDriverYieldsNoDDLButStillProposes(t *testing.T) {
	proposals := Synthesize("SELECT * FROM users WHERE email = ?", "users", false, "unknown_engine")
	if len(proposals) != 1 {
		t.Fatalf("expected one proposal, got %+v", proposals)
	}
	if proposals[0].SuggestedDDL != "" {
		t.Errorf("expected empty DDL for unknown driver, got %q", proposals[0].SuggestedDDL)
	}
}
