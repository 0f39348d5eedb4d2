// Package engine orchestrates the full analysis pipeline: sanitize, guard,
// extract shape, fetch and parse a plan, reconcile metrics, evaluate
// rules, classify root causes, score, and synthesize index proposals.
//
// Grounded on the teacher's internal/core.DB — the same
// validate-then-execute-then-audit-then-trace shape as ExecContext/
// QueryContext, generalized from one round trip into the ten-stage
// pipeline spec.md §4 describes, and reusing the teacher's functional
// options construction style (internal/core.Option).
package engine

import (
	"context"
	"time"

	"github.com/karimalihussein/querysentinel/internal/cache"
	"github.com/karimalihussein/querysentinel/internal/capture"
	"github.com/karimalihussein/querysentinel/internal/driver"
	"github.com/karimalihussein/querysentinel/internal/guard"
	"github.com/karimalihussein/querysentinel/internal/indexsynth"
	"github.com/karimalihussein/querysentinel/internal/logger"
	"github.com/karimalihussein/querysentinel/internal/metrics"
	"github.com/karimalihussein/querysentinel/internal/planparser"
	"github.com/karimalihussein/querysentinel/internal/profiler"
	"github.com/karimalihussein/querysentinel/internal/rootcause"
	"github.com/karimalihussein/querysentinel/internal/rules"
	"github.com/karimalihussein/querysentinel/internal/sanitizer"
	"github.com/karimalihussein/querysentinel/internal/scoring"
	"github.com/karimalihussein/querysentinel/internal/security"
	"github.com/karimalihussein/querysentinel/internal/shape"
	"github.com/karimalihussein/querysentinel/internal/tracer"
	"github.com/karimalihussein/querysentinel/internal/util"
)

// Engine runs the diagnostic pipeline against one database dialect.
type Engine struct {
	driver            driver.Interface
	guard             *guard.Guard
	rules             *rules.Registry
	cache             *cache.ReportCache[*Report]
	tracer            tracer.Tracer
	logger            logger.Logger
	auditor           *security.Auditor
	timeout           time.Duration
	nPlusOneThreshold int
	paramSanitizer    *logger.Sanitizer
}

// New builds an Engine. Without WithDriver, Analyze runs static-only:
// every stage that needs a fetched plan is skipped rather than failing.
func New(opts ...Option) *Engine {
	e := &Engine{
		guard:             guard.New(),
		rules:             rules.NewRegistry(),
		tracer:            &tracer.NoopTracer{},
		logger:            &logger.NoopLogger{},
		nPlusOneThreshold: profiler.DefaultNPlusOneThreshold,
		paramSanitizer:    logger.NewSanitizer(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the full pipeline against one SQL statement and returns its
// Report. A non-nil error means the pipeline terminated early (an unsafe
// or empty statement); Report.State names the last stage reached and
// Report.Error carries the same error for callers that discard err.
func (e *Engine) Analyze(ctx context.Context, sql string, args ...interface{}) (*Report, error) {
	start := time.Now()
	ctx, span := e.tracer.StartSpan(ctx, "engine.Analyze")
	defer span.End()

	report := &Report{SQL: sql, State: StateReceived, AnalyzedAt: start}

	sanitized := sanitizer.Sanitize(sql)
	report.SanitizedSQL = sanitized
	report.State = StateSanitized

	if len(args) > 0 {
		e.logger.Debug("analyzing query", "sql", sanitized,
			"params", e.paramSanitizer.FormatParams(e.paramSanitizer.MaskParams(sanitized, args)))
	}

	if sanitized != "" && e.cache != nil {
		if cached, ok := e.cache.Get(e.cacheKey(sanitized)); ok {
			return cached, nil
		}
	}

	if err := e.guard.Validate(sanitized); err != nil {
		if e.auditor != nil {
			e.auditor.LogSecurityEvent(ctx, "query_blocked", sanitized, err)
		}
		return e.terminate(ctx, report, start, span, WrapKind(KindUnsafeQuery, err))
	}
	report.State = StateGuarded

	sh := shape.Parse(sanitized)
	report.Shape = sh
	report.State = StateShapeExtracted

	m := metrics.New()
	m.IsIntentionalScan = sh.IsIntentionalFullScan
	m.TablesAccessed = sh.Tables

	if e.driver != nil {
		var planErr error
		m, report.PlanAvailable, planErr = e.fetchPlan(ctx, sanitized, args, m)
		report.PlanError = WrapKind(KindPlanUnavailable, planErr)
	}
	if report.PlanAvailable {
		report.State = StatePlanFetched
	} else {
		report.State = StatePlanSkipped
	}

	m, repairs := metrics.ValidateConsistency(m)
	report.Repairs = repairs
	report.Metrics = m
	report.State = StateMetricsReconciled
	for _, repair := range repairs {
		e.logger.Debug("invariant repair applied", "kind", string(KindInvariantRepair), "field", repair.Field, "reason", repair.Reason)
	}

	findings := e.rules.Evaluate(m)
	report.State = StateRulesEvaluated

	causes := rootcause.Classify(m, findings)
	findings = rootcause.SuppressByRootCause(findings, causes)
	report.Findings = findings
	report.Causes = causes
	report.TopRecommendation = rootcause.IdentifyTopRecommendation(causes)
	report.State = StateCausesClassified

	report.Scoring = scoring.Score(m, report.HasCritical())
	report.State = StateScored

	driverName := ""
	if e.driver != nil {
		driverName = e.driver.DriverName()
	}
	for _, table := range sh.Tables {
		report.IndexProposals = append(report.IndexProposals, indexsynth.Synthesize(sanitized, table, sh.IsIntentionalFullScan, driverName)...)
	}

	report.Duration = time.Since(start)
	report.State = StateReported

	if e.cache != nil {
		e.cache.Set(e.cacheKey(sanitized), report)
	}
	if e.auditor != nil {
		e.auditor.LogAnalysis(ctx, sanitized, args, report.Scoring.Grade, report.Scoring.Passed, report.Scoring.HasCritical, report.Duration)
	}

	meta := &tracer.AnalysisMetadata{
		SQL:          sanitized,
		Duration:     report.Duration,
		Database:     driverName,
		Operation:    tracer.DetectOperation(sanitized),
		Grade:        report.Scoring.Grade,
		RowsExamined: m.RowsExamined,
	}
	tracer.AddAnalysisAttributes(span, meta)

	return report, nil
}

// terminate finishes a Report that stopped before StateReported, logging
// and tracing the failure the same way a successful Analyze would.
func (e *Engine) terminate(ctx context.Context, report *Report, start time.Time, span tracer.Span, err error) (*Report, error) {
	report.Error = err
	report.Duration = time.Since(start)

	meta := &tracer.AnalysisMetadata{
		SQL:      report.SanitizedSQL,
		Duration: report.Duration,
		Error:    err,
	}
	tracer.AddAnalysisAttributes(span, meta)

	e.logger.Warn("analysis terminated early", "state", string(report.State), "error", err)
	return report, err
}

// fetchPlan calls out to the driver under the engine's configured timeout.
// A driver error or context cancellation degrades to static-only analysis
// rather than failing Analyze: the returned Metrics is m unchanged, and
// planAvailable is false. On success the returned Metrics is the decoded
// plan's, carrying over m's IsIntentionalScan flag from shape extraction.
func (e *Engine) fetchPlan(ctx context.Context, sql string, args []interface{}, m metrics.Metrics) (metrics.Metrics, bool, error) {
	explainCtx := ctx
	cancel := func() {}
	if e.timeout > 0 {
		explainCtx, cancel = util.WithTimeout(ctx, e.timeout)
	}
	defer cancel()

	tabularRows, planTree, err := e.driver.Explain(explainCtx, sql, args)
	if err != nil || util.IsCanceled(explainCtx) {
		e.logger.Warn("plan fetch skipped, falling back to static analysis", "driver", e.driver.DriverName(), "error", err)
		return m, false, err
	}

	parsed, perr := e.decodePlan(tabularRows, planTree)
	if perr != nil {
		e.logger.Warn("plan decode failed, falling back to static analysis", "driver", e.driver.DriverName(), "error", perr)
		return m, false, perr
	}

	parsed.IsIntentionalScan = m.IsIntentionalScan
	parsed, _ = metrics.EnrichFromExplain(parsed, tabularRows)
	return parsed, true, nil
}

// decodePlan picks the dialect's expected raw shape and hands it to
// internal/planparser.
func (e *Engine) decodePlan(tabularRows []map[string]interface{}, planTree []byte) (metrics.Metrics, error) {
	switch e.driver.DriverName() {
	case "mysql":
		return planparser.Parse(planparser.FormatMySQLJSON, planTree)
	case "postgres":
		return planparser.Parse(planparser.FormatPostgresJSON, planTree)
	case "sqlite":
		text := driver.DetailText(tabularRows)
		return planparser.Parse(planparser.FormatSQLiteText, []byte(text))
	default:
		return metrics.Metrics{}, &planparser.UnsupportedFormatError{Format: planparser.Format(e.driver.DriverName())}
	}
}

// cacheKey scopes the report cache by dialect so the same SQL text against
// two different drivers never collides.
func (e *Engine) cacheKey(sanitized string) string {
	driverName := "static"
	if e.driver != nil {
		driverName = e.driver.DriverName()
	}
	return driverName + "\x00" + sanitized
}

// Profile analyzes a batch of captured query invocations, grouping by
// normalized SQL so each distinct query is analyzed at most once, and
// flags N+1 access patterns across the batch.
func (e *Engine) Profile(ctx context.Context, captures []capture.Capture) (*ProfileReport, error) {
	groups := profiler.Group(captures)
	flagged := profiler.DetectNPlusOne(groups, e.nPlusOneThreshold)
	isFlagged := make(map[string]bool, len(flagged))
	for _, f := range flagged {
		isFlagged[f] = true
	}

	pr := &ProfileReport{
		Mode:             ModeProfiler,
		Captures:         captures,
		DuplicateGroups:  make(map[string][]capture.Capture),
		QueryCounts:      make(map[string]int, len(groups)),
		TotalCaptures:    len(captures),
		DistinctQueries:  len(groups),
		NPlusOneQueries:  flagged,
		NPlusOneDetected: len(flagged) > 0,
	}

	reportByGroup := make(map[string]*Report, len(groups))

	for _, g := range groups {
		pr.QueryCounts[g.NormalizedSQL] = len(g.Captures)
		if len(g.Captures) > 1 {
			pr.DuplicateGroups[g.NormalizedSQL] = g.Captures
		}

		var sampleArgs []interface{}
		if len(g.Captures) > 0 {
			sampleArgs = g.Captures[0].Params()
		}
		report, err := e.Analyze(ctx, g.SampleSQL, sampleArgs...)
		if err != nil {
			pr.SkippedCount++
			continue
		}
		if report != nil && isFlagged[g.NormalizedSQL] {
			report.NPlusOneDetected = true
		}

		pr.AnalyzedCount++
		reportByGroup[g.NormalizedSQL] = report
		pr.CumulativeElapsedMS += g.TotalElapsedMS()

		if report != nil {
			if pr.SlowestReport == nil || report.Duration > pr.SlowestReport.Duration {
				pr.SlowestReport = report
			}
			if pr.WorstByScoreReport == nil || report.Scoring.CompositeScore < pr.WorstByScoreReport.Scoring.CompositeScore {
				pr.WorstByScoreReport = report
			}
		}

		pr.Queries = append(pr.Queries, QuerySummary{
			NormalizedSQL:  g.NormalizedSQL,
			SampleSQL:      g.SampleSQL,
			Count:          len(g.Captures),
			TotalElapsedMS: g.TotalElapsedMS(),
			AvgElapsedMS:   g.AvgElapsedMS(),
			Report:         report,
		})
	}

	for _, c := range captures {
		pr.CaptureReports = append(pr.CaptureReports, reportByGroup[c.Normalize()])
	}

	return pr, nil
}
