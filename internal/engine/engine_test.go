package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/karimalihussein/querysentinel/internal/capture"
)

// stubDriver implements driver.Interface with canned responses, so engine
// tests never open a real database connection.
type stubDriver struct {
	name        string
	tabularRows []map[string]interface{}
	planTree    []byte
	err         error
}

func (d *stubDriver) DriverName() string { return d.name }

func (d *stubDriver) Explain(_ context.Context, _ string, _ []interface{}) ([]map[string]interface{}, []byte, error) {
	return d.tabularRows, d.planTree, d.err
}

// spyLogger records every Debug call's args so tests can assert on what
// reached the logger without a real sink.
type spyLogger struct {
	debugArgs [][]any
}

func (l *spyLogger) Debug(_ string, args ...any) { l.debugArgs = append(l.debugArgs, args) }
func (l *spyLogger) Info(_ string, _ ...any)      {}
func (l *spyLogger) Warn(_ string, _ ...any)      {}
func (l *spyLogger) Error(_ string, _ ...any)     {}

func TestAnalyze_EmptyQueryReturnsError(t *testing.T) {
	e := New()
	report, err := e.Analyze(context.Background(), "   -- just a comment")
	if err == nil {
		t.Fatal("expected error for empty/comment-only query")
	}
	if !IsKind(err, KindUnsafeQuery) {
		t.Errorf("err = %v, want KindUnsafeQuery", err)
	}
	if report.State != StateSanitized {
		t.Errorf("State = %v, want StateSanitized", report.State)
	}
}

func TestAnalyze_UnsafeQueryTerminates(t *testing.T) {
	e := New()
	report, err := e.Analyze(context.Background(), "DROP TABLE users")
	if err == nil {
		t.Fatal("expected error for unsafe query")
	}
	if !IsKind(err, KindUnsafeQuery) {
		t.Errorf("err = %v, want KindUnsafeQuery", err)
	}
	if report.State != StateSanitized {
		t.Errorf("State = %v, want StateSanitized", report.State)
	}
}

func TestAnalyze_StaticOnlyWithoutDriver(t *testing.T) {
	e := New()
	report, err := e.Analyze(context.Background(), "SELECT * FROM users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.State != StateReported {
		t.Errorf("State = %v, want StateReported", report.State)
	}
	if report.PlanAvailable {
		t.Error("PlanAvailable should be false with no driver configured")
	}
	if !report.Metrics.IsIntentionalScan {
		t.Error("bare SELECT * FROM users should be an intentional scan")
	}
	if !report.Scoring.Passed {
		t.Errorf("expected a static-only intentional scan to pass, composite = %v", report.Scoring.CompositeScore)
	}
}

func TestAnalyze_MySQLFullTableScan(t *testing.T) {
	planJSON := `{
		"query_block": {
			"table": {
				"table_name": "orders",
				"access_type": "ALL",
				"rows_examined_per_scan": 50000,
				"rows_produced_per_join": 50000
			}
		}
	}`
	d := &stubDriver{name: "mysql", planTree: []byte(planJSON)}
	e := New(WithDriver(d))

	report, err := e.Analyze(context.Background(), "SELECT * FROM orders WHERE status = 'pending'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.PlanAvailable {
		t.Fatal("PlanAvailable should be true")
	}
	if !report.Metrics.HasTableScan {
		t.Error("expected HasTableScan")
	}

	// no_index also fires here, and the missing_index root cause it implies
	// suppresses full_table_scan, leaving no_index as the surviving finding.
	var foundNoIndex bool
	for _, f := range report.Findings {
		if f.Category == "no_index" {
			foundNoIndex = true
		}
	}
	if !foundNoIndex {
		t.Error("expected a no_index finding")
	}
}

func TestAnalyze_DriverErrorDegradesToStatic(t *testing.T) {
	d := &stubDriver{name: "mysql", err: context.DeadlineExceeded}
	e := New(WithDriver(d))

	report, err := e.Analyze(context.Background(), "SELECT * FROM orders WHERE id = 1")
	if err != nil {
		t.Fatalf("driver failure should degrade, not error: %v", err)
	}
	if report.PlanAvailable {
		t.Error("PlanAvailable should be false after driver error")
	}
	if report.State != StateReported {
		t.Errorf("State = %v, want StateReported", report.State)
	}
}

func TestAnalyze_CacheHitReturnsSameReport(t *testing.T) {
	e := New(WithCacheCapacity(10))

	first, err := e.Analyze(context.Background(), "SELECT * FROM users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.Analyze(context.Background(), "SELECT * FROM users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("expected cache hit to return the identical Report pointer")
	}
}

func TestProfile_DetectsNPlusOne(t *testing.T) {
	e := New()

	var captures []capture.Capture
	for i := 0; i < 6; i++ {
		captures = append(captures, capture.New("SELECT * FROM comments WHERE post_id = ?", []interface{}{i}, time.Millisecond, ""))
	}
	captures = append(captures, capture.New("SELECT * FROM posts", nil, time.Millisecond, ""))

	pr, err := e.Profile(context.Background(), captures)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pr.NPlusOneDetected {
		t.Error("expected N+1 to be detected")
	}
	if pr.DistinctQueries != 2 {
		t.Errorf("DistinctQueries = %d, want 2", pr.DistinctQueries)
	}
	if pr.TotalCaptures != 7 {
		t.Errorf("TotalCaptures = %d, want 7", pr.TotalCaptures)
	}
	for _, q := range pr.Queries {
		if q.Report == nil {
			t.Errorf("query %q missing Report", q.NormalizedSQL)
		}
	}
}

func TestAnalyze_MasksSensitiveParamsInDebugLog(t *testing.T) {
	spy := &spyLogger{}
	e := New(WithLogger(spy))

	_, err := e.Analyze(context.Background(), "SELECT * FROM users WHERE password = ?", "hunter2-super-secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(spy.debugArgs) == 0 {
		t.Fatal("expected a debug log call for a query with bind params")
	}
	found := false
	for _, args := range spy.debugArgs {
		for i := 0; i+1 < len(args); i += 2 {
			if args[i] == "params" {
				found = true
				got, _ := args[i+1].(string)
				if !strings.Contains(got, "REDACTED") {
					t.Errorf("params = %q, want masked value", got)
				}
				if strings.Contains(got, "hunter2-super-secret") {
					t.Errorf("params = %q, leaked raw sensitive value", got)
				}
			}
		}
	}
	if !found {
		t.Fatal("expected a \"params\" key in the debug log call")
	}
}
