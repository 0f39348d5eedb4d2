package engine

import "errors"

// Kind tags a recovered condition with which pipeline stage produced it.
type Kind string

const (
	KindUnsafeQuery          Kind = "unsafe_query"
	KindPlanUnavailable      Kind = "plan_unavailable"
	KindParseWarning         Kind = "parse_warning"
	KindInvariantRepair      Kind = "invariant_repair"
	KindPerformanceViolation Kind = "performance_violation"
)

// KindError wraps an underlying error with the Kind of recovered condition
// that produced it, so callers can errors.As/errors.Is against a specific
// stage without string-matching messages.
//
// Grounded on the teacher's internal/core.wrappedError/WrapError, carried
// over near-verbatim with the wrapped field renamed to Kind since the
// engine tags conditions by pipeline stage rather than by free-text
// context message.
type KindError struct {
	Kind Kind
	Err  error
}

// WrapKind wraps err with kind, or returns nil if err is nil.
func WrapKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Err: err}
}

func (e *KindError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err (or any error it wraps) was tagged with kind.
func IsKind(err error, kind Kind) bool {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind == kind
	}
	return false
}
