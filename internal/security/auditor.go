package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

// AuditLevel defines which analysis outcomes get audit-logged.
type AuditLevel int

const (
	// AuditNone disables audit logging.
	AuditNone AuditLevel = iota
	// AuditFailuresOnly logs only reports that failed acceptance (composite
	// below 70 or any critical finding).
	AuditFailuresOnly
	// AuditAll logs every analysis outcome, passing or failing.
	AuditAll
)

// AnalysisEvent represents one completed analysis for audit logging.
type AnalysisEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	User        string    `json:"user,omitempty"`
	SQL         string    `json:"sql"`
	ParamsHash  string    `json:"params_hash,omitempty"`
	ClientIP    string    `json:"client_ip,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	Grade       string    `json:"grade"`
	Passed      bool      `json:"passed"`
	HasCritical bool      `json:"has_critical"`
	Duration    int64     `json:"duration_ms,omitempty"`
}

// Auditor handles audit logging of analysis outcomes and guard decisions.
type Auditor struct {
	logger *slog.Logger
	level  AuditLevel
}

// NewAuditor creates a new audit logger.
func NewAuditor(logger *slog.Logger, level AuditLevel) *Auditor {
	return &Auditor{
		logger: logger,
		level:  level,
	}
}

// LogAnalysis logs one analyze() outcome to the audit log, honoring the
// configured AuditLevel.
func (a *Auditor) LogAnalysis(ctx context.Context, query string, params []interface{}, grade string, passed, hasCritical bool, duration time.Duration) {
	if !a.shouldLog(passed) {
		return
	}

	event := AnalysisEvent{
		Timestamp:   time.Now().UTC(),
		SQL:         query,
		Grade:       grade,
		Passed:      passed,
		HasCritical: hasCritical,
		Duration:    duration.Milliseconds(),
	}

	if user, ok := ctx.Value(userKey).(string); ok {
		event.User = user
	}
	if clientIP, ok := ctx.Value(clientIPKey).(string); ok {
		event.ClientIP = clientIP
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		event.RequestID = requestID
	}
	if len(params) > 0 {
		event.ParamsHash = hashParams(params)
	}

	a.logEvent(event)
}

// LogSecurityEvent logs a guard decision (blocked unsafe query, validation
// failure) regardless of AuditLevel — these are never suppressed.
func (a *Auditor) LogSecurityEvent(ctx context.Context, eventType, query string, err error) {
	if a.logger == nil {
		return
	}

	timestamp := time.Now().UTC()
	user, _ := ctx.Value(userKey).(string)
	clientIP, _ := ctx.Value(clientIPKey).(string)
	requestID, _ := ctx.Value(requestIDKey).(string)

	a.logger.Warn("security_event",
		"event_type", eventType,
		"timestamp", timestamp,
		"user", user,
		"client_ip", clientIP,
		"request_id", requestID,
		"query", query,
		"error", err.Error(),
	)
}

// shouldLog determines whether an analysis outcome should be logged given
// the configured AuditLevel.
func (a *Auditor) shouldLog(passed bool) bool {
	if a.logger == nil || a.level == AuditNone {
		return false
	}
	if a.level == AuditAll {
		return true
	}
	return !passed
}

// logEvent writes the audit event to the logger.
func (a *Auditor) logEvent(event AnalysisEvent) {
	if a.logger == nil {
		return
	}

	logFunc := a.logger.Info
	if !event.Passed {
		logFunc = a.logger.Warn
	}

	logFunc("audit_event",
		"timestamp", event.Timestamp,
		"user", event.User,
		"sql", event.SQL,
		"params_hash", event.ParamsHash,
		"client_ip", event.ClientIP,
		"request_id", event.RequestID,
		"grade", event.Grade,
		"passed", event.Passed,
		"has_critical", event.HasCritical,
		"duration_ms", event.Duration,
	)
}

// hashParams creates a SHA256 hash of parameters for audit trail. This
// allows tracking which parameters were used without logging sensitive
// data.
func hashParams(params []interface{}) string {
	if len(params) == 0 {
		return ""
	}

	h := sha256.New()
	for _, param := range params {
		_, _ = fmt.Fprintf(h, "%v", param) // hash.Hash.Write never returns error
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Context keys for audit metadata.
type contextKey string

const (
	userKey      contextKey = "querysentinel:user"
	clientIPKey  contextKey = "querysentinel:client_ip"
	requestIDKey contextKey = "querysentinel:request_id"
)

// WithUser adds user information to the context for audit logging.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// WithClientIP adds client IP to the context for audit logging.
func WithClientIP(ctx context.Context, clientIP string) context.Context {
	return context.WithValue(ctx, clientIPKey, clientIP)
}

// WithRequestID adds request ID to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetUser retrieves user from context (for testing/debugging).
func GetUser(ctx context.Context) string {
	user, _ := ctx.Value(userKey).(string)
	return user
}

// GetClientIP retrieves client IP from context (for testing/debugging).
func GetClientIP(ctx context.Context) string {
	clientIP, _ := ctx.Value(clientIPKey).(string)
	return clientIP
}

// GetRequestID retrieves request ID from context (for testing/debugging).
func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}
