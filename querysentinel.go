// Package querysentinel analyzes SQL statements for performance problems
// before and while they run: it classifies a statement's structural shape,
// fetches and parses the database's own EXPLAIN plan, evaluates a set of
// independent diagnostic rules against the resulting metrics, and scores
// the result into a letter grade with concrete index recommendations.
//
// Package querysentinel re-exports the public surface of internal/engine,
// internal/violation, and internal/discovery the same way the teacher's
// top-level package forwarded internal/core — callers import this package
// and never reach into internal/.
package querysentinel

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/karimalihussein/querysentinel/internal/capture"
	"github.com/karimalihussein/querysentinel/internal/discovery"
	"github.com/karimalihussein/querysentinel/internal/driver"
	"github.com/karimalihussein/querysentinel/internal/engine"
	"github.com/karimalihussein/querysentinel/internal/violation"
)

type (
	// Engine runs the diagnostic pipeline against one database dialect.
	Engine = engine.Engine
	// Option configures an Engine at construction time.
	Option = engine.Option
	// Report is the full result of analyzing one SQL statement.
	Report = engine.Report
	// ProfileReport is the result of profiling a batch of captured query
	// invocations for repeated (N+1) access patterns.
	ProfileReport = engine.ProfileReport
	// QuerySummary is one distinct query's aggregate stats within a
	// profiled batch.
	QuerySummary = engine.QuerySummary
	// State names the pipeline stage a Report last completed.
	State = engine.State
	// Kind tags a recovered condition with which pipeline stage produced
	// it (unsafe_query, plan_unavailable, parse_warning, invariant_repair,
	// performance_violation).
	Kind = engine.Kind

	// Capture is an immutable record of one observed query invocation,
	// fed to Profile.
	Capture = capture.Capture

	// DiagnoseQuery is a declarative marker attached to an application
	// method to opt it into profiling.
	DiagnoseQuery = discovery.DiagnoseQuery
	// MethodRegistration records one method an external discovery pass
	// found annotated with DiagnoseQuery.
	MethodRegistration = discovery.MethodRegistration

	// PerformanceViolationException reports why a Report failed
	// acceptance, for a CI pipeline to surface.
	PerformanceViolationException = violation.PerformanceViolationException
	// ThresholdGuard decides whether one analyzed call's elapsed time is
	// worth logging against a configured threshold.
	ThresholdGuard = violation.ThresholdGuard
)

// Re-export pipeline stage kinds.
const (
	KindUnsafeQuery          = engine.KindUnsafeQuery
	KindPlanUnavailable      = engine.KindPlanUnavailable
	KindParseWarning         = engine.KindParseWarning
	KindInvariantRepair      = engine.KindInvariantRepair
	KindPerformanceViolation = engine.KindPerformanceViolation
)

// Re-export engine construction and the CI-facing boundary.
var (
	New                   = engine.New
	WithDriver            = engine.WithDriver
	WithRuleRegistry      = engine.WithRuleRegistry
	WithCacheCapacity     = engine.WithCacheCapacity
	WithTracer            = engine.WithTracer
	WithLogger            = engine.WithLogger
	WithAuditor           = engine.WithAuditor
	WithTimeout           = engine.WithTimeout
	WithNPlusOneThreshold = engine.WithNPlusOneThreshold
	WithSensitiveFields   = engine.WithSensitiveFields
	IsKind                = engine.IsKind
	NewCapture            = capture.New
	FromReport            = violation.FromReport
	NewThresholdGuard     = violation.NewThresholdGuard
)

// Open opens a *sql.DB for driverName/dsn and returns an Engine wired to
// analyze queries run against it. driverName must be one of
// "mysql"/"postgres"/"sqlite" — the same dialect names internal/dialects
// registers. The caller owns the returned *sql.DB's lifecycle.
//
// Grounded on the teacher's top-level Open/NewDB, which opened a *sql.DB
// and wrapped it in one step; here the wrap step builds an internal/driver
// adapter instead of a query builder.
func Open(driverName, dsn string, opts ...Option) (*Engine, *sql.DB, error) {
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, nil, err
	}

	d, err := newDriver(driverName, sqlDB)
	if err != nil {
		return nil, nil, err
	}

	allOpts := append([]Option{WithDriver(d), WithTimeout(defaultCallTimeout)}, opts...)
	return New(allOpts...), sqlDB, nil
}

// Wrap builds an Engine around an already-open *sql.DB, the same way the
// teacher's WrapDB let callers bring their own connection pool. The caller
// retains ownership of sqlDB, including closing it.
func Wrap(sqlDB *sql.DB, driverName string, opts ...Option) (*Engine, error) {
	d, err := newDriver(driverName, sqlDB)
	if err != nil {
		return nil, err
	}
	allOpts := append([]Option{WithDriver(d), WithTimeout(defaultCallTimeout)}, opts...)
	return New(allOpts...), nil
}

// NewStatic builds an Engine with no database connection at all: Analyze
// runs shape extraction and the rules that need no fetched plan, skipping
// everything that needs one.
func NewStatic(opts ...Option) *Engine {
	return New(opts...)
}

func newDriver(driverName string, sqlDB *sql.DB) (driver.Interface, error) {
	switch driverName {
	case "mysql":
		return driver.NewMySQL(sqlDB), nil
	case "postgres":
		return driver.NewPostgres(sqlDB), nil
	case "sqlite":
		return driver.NewSQLite(sqlDB), nil
	default:
		return nil, fmt.Errorf("querysentinel: unsupported driver %q", driverName)
	}
}

// defaultCallTimeout bounds how long an Engine opened via Open/Wrap waits
// on the EXPLAIN round trip before degrading to static-only analysis.
const defaultCallTimeout = 5 * time.Second
