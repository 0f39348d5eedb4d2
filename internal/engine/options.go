package engine

import (
	"time"

	"github.com/karimalihussein/querysentinel/internal/cache"
	"github.com/karimalihussein/querysentinel/internal/driver"
	"github.com/karimalihussein/querysentinel/internal/logger"
	"github.com/karimalihussein/querysentinel/internal/rules"
	"github.com/karimalihussein/querysentinel/internal/security"
	"github.com/karimalihussein/querysentinel/internal/tracer"
)

// Option is a functional option for configuring an Engine.
//
// Grounded on the teacher's internal/core.Option pattern (WithMaxOpenConns,
// WithOptimizer, WithAuditLog), carried over unchanged since the
// construction idiom fits this engine as well as it fit the teacher's DB.
type Option func(*Engine)

// WithDriver attaches the EXPLAIN adapter Analyze calls out to. Without
// one, Analyze runs static-only: shape extraction and the rules that need
// no plan data, skipping everything that needs a fetched plan.
func WithDriver(d driver.Interface) Option {
	return func(e *Engine) { e.driver = d }
}

// WithRuleRegistry overrides the default nine-rule registry.
func WithRuleRegistry(r *rules.Registry) Option {
	return func(e *Engine) { e.rules = r }
}

// WithCacheCapacity enables the report cache with the given capacity,
// keyed on sanitized SQL plus dialect name. A capacity of 0 disables
// caching (the default).
func WithCacheCapacity(capacity int) Option {
	return func(e *Engine) {
		if capacity <= 0 {
			e.cache = nil
			return
		}
		e.cache = cache.NewReportCacheWithCapacity[*Report](capacity)
	}
}

// WithTracer attaches a distributed tracer. Defaults to tracer.NoopTracer.
func WithTracer(t tracer.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithLogger attaches a structured logger. Defaults to logger.NoopLogger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithAuditor enables audit logging of analysis outcomes and guard
// decisions.
func WithAuditor(a *security.Auditor) Option {
	return func(e *Engine) { e.auditor = a }
}

// WithTimeout bounds how long Analyze will wait on the EXPLAIN round trip.
// A timed-out or canceled fetch degrades to a static-only analysis rather
// than failing the whole call. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithNPlusOneThreshold overrides the default N+1 detection threshold used
// by Profile.
func WithNPlusOneThreshold(n int) Option {
	return func(e *Engine) { e.nPlusOneThreshold = n }
}

// WithSensitiveFields overrides the default field-name list the logger's
// param redactor masks against (password, token, secret, ...) before
// Analyze logs bind parameters.
func WithSensitiveFields(fields []string) Option {
	return func(e *Engine) { e.paramSanitizer = logger.NewSanitizer(fields) }
}
