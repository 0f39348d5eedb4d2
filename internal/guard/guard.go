// Package guard classifies sanitized SQL as safe to pass to EXPLAIN
// (read-only) versus destructive, and rejects empty input. It is the gate
// between SqlSanitizer and the rest of the analysis pipeline.
//
// Grounded on the teacher's internal/security.Validator construction
// pattern (functional options over a precompiled pattern/keyword set), but
// reworked from a denylist-pattern matcher into the spec's allowlist
// classifier over the statement's leading keyword.
package guard

import (
	"errors"
	"strings"
)

// ErrUnsafeQuery is returned by Validate when the statement is not safe to
// EXPLAIN: it is a write/DDL/admin statement, or empty.
var ErrUnsafeQuery = errors.New("unsafe_query: statement is not safe to analyze")

var safeKeywords = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"EXPLAIN":  true,
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
}

var selectKeywords = map[string]bool{
	"SELECT": true,
	"WITH":   true,
}

// Guard validates sanitized SQL before it reaches a database driver.
type Guard struct{}

// New creates a Guard. Guard carries no configuration; it is stateless and
// safe for concurrent use.
func New() *Guard { return &Guard{} }

// IsSafe reports whether sanitized sql's leading keyword is one of
// SELECT/WITH/EXPLAIN/SHOW/DESCRIBE/DESC (case-insensitive). Empty input is
// never safe.
func (g *Guard) IsSafe(sql string) bool {
	return safeKeywords[leadingKeyword(sql)]
}

// IsSelect reports whether sanitized sql's leading keyword is SELECT or
// WITH — the only statements that can be classified as intentional scans.
func (g *Guard) IsSelect(sql string) bool {
	return selectKeywords[leadingKeyword(sql)]
}

// Validate returns ErrUnsafeQuery if sql is not safe to EXPLAIN.
func (g *Guard) Validate(sql string) error {
	if !g.IsSafe(sql) {
		return ErrUnsafeQuery
	}
	return nil
}

// leadingKeyword extracts the first whitespace-delimited token of sql,
// upper-cased, or "" for empty/whitespace-only input.
func leadingKeyword(sql string) string {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return ""
	}
	end := strings.IndexFunc(trimmed, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '('
	})
	if end == -1 {
		end = len(trimmed)
	}
	return strings.ToUpper(trimmed[:end])
}
