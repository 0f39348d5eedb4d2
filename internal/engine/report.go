package engine

import (
	"time"

	"github.com/karimalihussein/querysentinel/internal/capture"
	"github.com/karimalihussein/querysentinel/internal/indexsynth"
	"github.com/karimalihussein/querysentinel/internal/metrics"
	"github.com/karimalihussein/querysentinel/internal/rootcause"
	"github.com/karimalihussein/querysentinel/internal/rules"
	"github.com/karimalihussein/querysentinel/internal/scoring"
	"github.com/karimalihussein/querysentinel/internal/shape"
)

// Mode names which AnalyzerInterface entry point produced a result: a
// single Analyze call, or a batch Profile call.
type Mode string

const (
	ModeSQL      Mode = "sql"
	ModeProfiler Mode = "profiler"
)

// State names the pipeline stage a Report last completed. A Report blocked
// by the guard terminates early: its State stays at StateSanitized and it
// carries a non-nil Error. A failed plan fetch does not terminate; the
// Report passes through StatePlanSkipped and ends at StateReported.
type State string

const (
	StateReceived          State = "received"
	StateSanitized         State = "sanitized"
	StateGuarded           State = "guarded"
	StateShapeExtracted    State = "shape_extracted"
	StatePlanFetched       State = "plan_fetched"
	StatePlanSkipped       State = "plan_skipped"
	StateMetricsReconciled State = "metrics_reconciled"
	StateRulesEvaluated    State = "rules_evaluated"
	StateCausesClassified  State = "causes_classified"
	StateScored            State = "scored"
	StateReported          State = "reported"
)

// Report is the full result of analyzing one SQL statement.
type Report struct {
	SQL          string
	SanitizedSQL string
	State        State
	Error        error

	Shape   shape.Shape
	Metrics metrics.Metrics
	Repairs []metrics.Repair

	PlanAvailable bool
	PlanError     error

	Findings          []rules.Finding
	Causes            []rootcause.Cause
	TopRecommendation rootcause.Recommendation
	Scoring           scoring.Result
	IndexProposals    []indexsynth.Proposal

	// NPlusOneDetected is set by Profile on a query's Report when it was
	// part of a batch group whose repetition count met the N+1 threshold.
	// Analyze never sets this field.
	NPlusOneDetected bool

	AnalyzedAt time.Time
	Duration   time.Duration
}

// HasCritical reports whether any surviving finding is critical severity.
func (r *Report) HasCritical() bool {
	for _, f := range r.Findings {
		if f.Severity == rules.SeverityCritical {
			return true
		}
	}
	return false
}

// QuerySummary is one distinct normalized query's aggregate stats within a
// profiled batch, plus the Report produced by analyzing one sample of it.
type QuerySummary struct {
	NormalizedSQL  string
	SampleSQL      string
	Count          int
	TotalElapsedMS float64
	AvgElapsedMS   float64
	Report         *Report
}

// ProfileReport is the result of profiling a batch of captured query
// invocations: each distinct normalized query analyzed once, plus N+1
// detection across the batch.
type ProfileReport struct {
	Mode Mode

	Queries []QuerySummary

	// Captures holds the raw batch Profile was given, in input order.
	Captures []capture.Capture

	// CaptureReports parallels Captures: CaptureReports[i] is the Report
	// for the query group capture Captures[i] belongs to (the same *Report
	// pointer is shared across every capture in one group).
	CaptureReports []*Report

	// DuplicateGroups buckets captures by normalized SQL, restricted to
	// groups that recurred more than once in the batch.
	DuplicateGroups map[string][]capture.Capture

	// QueryCounts is the occurrence count of every distinct normalized SQL
	// in the batch, including groups that occurred only once.
	QueryCounts map[string]int

	TotalCaptures       int
	AnalyzedCount       int
	SkippedCount        int
	DistinctQueries     int
	CumulativeElapsedMS float64

	// SlowestReport is the Report whose Duration was largest among every
	// distinct query analyzed. Nil if none analyzed successfully.
	SlowestReport      *Report
	// WorstByScoreReport is the Report with the lowest composite score
	// among every distinct query analyzed. Nil if none analyzed
	// successfully.
	WorstByScoreReport *Report

	NPlusOneDetected bool
	NPlusOneQueries  []string
}
