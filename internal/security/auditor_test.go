package security

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestAuditor_LogAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		level   AuditLevel
		passed  bool
		wantLog bool
	}{
		{
			name:    "failing_report_failures_only",
			level:   AuditFailuresOnly,
			passed:  false,
			wantLog: true,
		},
		{
			name:    "passing_report_failures_only",
			level:   AuditFailuresOnly,
			passed:  true,
			wantLog: false,
		},
		{
			name:    "passing_report_audit_all",
			level:   AuditAll,
			passed:  true,
			wantLog: true,
		},
		{
			name:    "audit_none",
			level:   AuditNone,
			passed:  false,
			wantLog: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

			auditor := NewAuditor(logger, tt.level)
			ctx := context.Background()

			auditor.LogAnalysis(ctx, "SELECT * FROM users WHERE id = ?", []interface{}{1}, "B", tt.passed, false, 10*time.Millisecond)

			logOutput := buf.String()
			if tt.wantLog && logOutput == "" {
				t.Error("expected audit log but got none")
			}
			if !tt.wantLog && logOutput != "" {
				t.Errorf("expected no audit log but got: %s", logOutput)
			}
		})
	}
}

func TestAuditor_ContextMetadata(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	auditor := NewAuditor(logger, AuditAll)

	ctx := context.Background()
	ctx = WithUser(ctx, "john.doe@example.com")
	ctx = WithClientIP(ctx, "192.168.1.100")
	ctx = WithRequestID(ctx, "req-12345")

	auditor.LogAnalysis(ctx, "SELECT 1", nil, "A", true, false, 5*time.Millisecond)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "john.doe@example.com") {
		t.Error("log missing user from context")
	}
	if !strings.Contains(logOutput, "192.168.1.100") {
		t.Error("log missing client IP from context")
	}
	if !strings.Contains(logOutput, "req-12345") {
		t.Error("log missing request ID from context")
	}
}

func TestAuditor_ParamsHash(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	auditor := NewAuditor(logger, AuditAll)
	ctx := context.Background()

	auditor.LogAnalysis(ctx, "SELECT * FROM users WHERE email = ?", []interface{}{"alice@example.com"}, "C", true, false, 10*time.Millisecond)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "params_hash") {
		t.Error("log missing params_hash")
	}
	if strings.Contains(logOutput, "alice@example.com") {
		t.Error("log contains sensitive parameter value (should be hashed)")
	}

	hash1 := hashParams([]interface{}{"Alice", "alice@example.com"})
	hash2 := hashParams([]interface{}{"Alice", "alice@example.com"})
	if hash1 != hash2 {
		t.Error("parameter hash is not consistent")
	}

	hash3 := hashParams([]interface{}{"Bob", "bob@example.com"})
	if hash1 == hash3 {
		t.Error("different parameters produced same hash")
	}
}

func TestAuditor_LogSecurityEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	auditor := NewAuditor(logger, AuditAll)

	ctx := context.Background()
	ctx = WithUser(ctx, "attacker@evil.com")
	ctx = WithClientIP(ctx, "10.0.0.1")

	auditor.LogSecurityEvent(ctx, "query_blocked",
		"DROP TABLE users",
		errors.New("unsafe query blocked"))

	logOutput := buf.String()
	if !strings.Contains(logOutput, "security_event") {
		t.Error("log missing security_event marker")
	}
	if !strings.Contains(logOutput, "query_blocked") {
		t.Error("log missing event type")
	}
	if !strings.Contains(logOutput, "attacker@evil.com") {
		t.Error("log missing user")
	}
	if !strings.Contains(logOutput, "unsafe query blocked") {
		t.Error("log missing error message")
	}
}

func TestAuditor_NilLogger(t *testing.T) {
	auditor := NewAuditor(nil, AuditAll)
	ctx := context.Background()

	auditor.LogAnalysis(ctx, "SELECT 1", []interface{}{1}, "A", true, false, 1*time.Millisecond)
	auditor.LogSecurityEvent(ctx, "test_event", "SELECT 1", errors.New("test error"))
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	ctx = WithUser(ctx, "test.user@example.com")
	if user := GetUser(ctx); user != "test.user@example.com" {
		t.Errorf("GetUser() = %s, want test.user@example.com", user)
	}

	ctx = WithClientIP(ctx, "172.16.0.1")
	if ip := GetClientIP(ctx); ip != "172.16.0.1" {
		t.Errorf("GetClientIP() = %s, want 172.16.0.1", ip)
	}

	ctx = WithRequestID(ctx, "req-xyz-789")
	if reqID := GetRequestID(ctx); reqID != "req-xyz-789" {
		t.Errorf("GetRequestID() = %s, want req-xyz-789", reqID)
	}

	emptyCtx := context.Background()
	if user := GetUser(emptyCtx); user != "" {
		t.Errorf("GetUser(empty) = %s, want empty string", user)
	}
}

func TestHashParams(t *testing.T) {
	tests := []struct {
		name   string
		params []interface{}
		want   string
	}{
		{name: "empty_params", params: []interface{}{}, want: ""},
		{name: "single_param", params: []interface{}{"test"}, want: "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"},
		{name: "multiple_params", params: []interface{}{123, "test", true}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hashParams(tt.params)

			if tt.want == "" && len(tt.params) == 0 {
				if got != "" {
					t.Errorf("hashParams() = %s, want empty string for empty params", got)
				}
			} else if tt.want != "" {
				if got != tt.want {
					t.Errorf("hashParams() = %s, want %s", got, tt.want)
				}
			} else if len(tt.params) > 0 {
				if got == "" {
					t.Error("hashParams() returned empty string for non-empty params")
				}
				if len(got) != 64 {
					t.Errorf("hashParams() produced hash of length %d, want 64", len(got))
				}
			}
		})
	}
}

func TestAnalysisEvent_JSONSerialization(t *testing.T) {
	event := AnalysisEvent{
		Timestamp:   time.Date(2025, 1, 24, 10, 0, 0, 0, time.UTC),
		User:        "test@example.com",
		SQL:         "SELECT * FROM users WHERE id = ?",
		ParamsHash:  "abc123",
		ClientIP:    "192.168.1.1",
		RequestID:   "req-001",
		Grade:       "B",
		Passed:      true,
		HasCritical: false,
		Duration:    15,
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal AnalysisEvent: %v", err)
	}

	var decoded AnalysisEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal AnalysisEvent: %v", err)
	}

	if decoded.User != event.User {
		t.Errorf("User mismatch: got %s, want %s", decoded.User, event.User)
	}
	if decoded.Grade != event.Grade {
		t.Errorf("Grade mismatch: got %s, want %s", decoded.Grade, event.Grade)
	}
	if decoded.Passed != event.Passed {
		t.Errorf("Passed mismatch: got %v, want %v", decoded.Passed, event.Passed)
	}
}
