// Package violation is the CI-facing boundary: it turns a failing Report
// into an exception type a build pipeline can surface, and decides whether
// an individual call's elapsed time warrants logging against a configured
// threshold. Both types are raised outside the analysis core, consuming a
// finished engine.Report rather than participating in producing one.
//
// Grounded on the teacher's internal/core errors.go (wrappedError/WrapError
// message composition) for PerformanceViolationException, and on
// internal/security.Validator's threshold-style construction for
// ThresholdGuard — neither has a direct analog in the teacher since this
// boundary is new to the domain.
package violation

import (
	"fmt"

	"github.com/karimalihussein/querysentinel/internal/engine"
)

// PerformanceViolationException reports why a Report failed acceptance,
// for a CI pipeline to surface against the class/method it profiled.
type PerformanceViolationException struct {
	Report *engine.Report
	Reason string
	Class  string
	Method string
}

// FromReport derives a human-readable reason from report by inspecting, in
// order: grade F, a slow report (>= 500ms), an N+1 access pattern, a full
// table scan, or — failing all of those — the presence of any critical
// finding. Multiple conditions concatenate with "; ".
func FromReport(report *engine.Report, class, method string) *PerformanceViolationException {
	var reasons []string

	if report.Scoring.Grade == "F" {
		reasons = append(reasons, "grade F")
	}
	if ms := report.Duration.Milliseconds(); ms >= 500 {
		reasons = append(reasons, fmt.Sprintf("slow query (%dms)", ms))
	}
	if report.NPlusOneDetected {
		reasons = append(reasons, "N+1")
	}
	if report.Metrics.HasTableScan {
		reasons = append(reasons, "full table scan")
	}
	if len(reasons) == 0 && report.HasCritical() {
		reasons = append(reasons, "critical findings")
	}

	reason := joinReasons(reasons)
	return &PerformanceViolationException{
		Report: report,
		Reason: reason,
		Class:  class,
		Method: method,
	}
}

func joinReasons(reasons []string) string {
	joined := ""
	for i, r := range reasons {
		if i > 0 {
			joined += "; "
		}
		joined += r
	}
	return joined
}

// Error implements the error interface; the message carries class, method,
// and the full reason string so a CI log line is self-contained.
func (e *PerformanceViolationException) Error() string {
	return fmt.Sprintf("%s.%s: performance violation: %s", e.Class, e.Method, e.Reason)
}

// ThresholdGuard decides whether one analyzed call's elapsed time is worth
// logging, given an optional per-method threshold and a global fallback.
// It holds no state; it is a pure function wrapped in a type for symmetry
// with the rest of the CI boundary.
type ThresholdGuard struct{}

// NewThresholdGuard returns a ThresholdGuard.
func NewThresholdGuard() *ThresholdGuard { return &ThresholdGuard{} }

// ShouldLog reports whether elapsedMs should be logged. The effective
// threshold is max(methodThresholdMs, globalThresholdMs), treating negative
// values as zero; an effective threshold of zero always logs.
func (ThresholdGuard) ShouldLog(elapsedMs, methodThresholdMs, globalThresholdMs float64) bool {
	if methodThresholdMs < 0 {
		methodThresholdMs = 0
	}
	if globalThresholdMs < 0 {
		globalThresholdMs = 0
	}
	effective := methodThresholdMs
	if globalThresholdMs > effective {
		effective = globalThresholdMs
	}
	return elapsedMs >= effective
}
