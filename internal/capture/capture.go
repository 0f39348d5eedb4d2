// Package capture models a single observed query invocation: the raw SQL
// text, its parameter bindings, and the timing/connection metadata the
// profiler needs to group and replay it.
package capture

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Capture is an immutable record of one query invocation as seen by the
// application under test. Construct with New; all derived forms are
// computed on demand and never mutate the receiver.
type Capture struct {
	sql             string
	params          []interface{}
	elapsed         time.Duration
	connectionLabel string
	capturedAt      time.Time
}

// New builds a Capture from raw SQL with placeholders, its ordered
// parameter bindings, and the elapsed execution time. connectionLabel may
// be empty when the caller does not track multiple connections.
func New(sql string, params []interface{}, elapsed time.Duration, connectionLabel string) Capture {
	return Capture{
		sql:             sql,
		params:          append([]interface{}(nil), params...),
		elapsed:         elapsed,
		connectionLabel: connectionLabel,
		capturedAt:      time.Now(),
	}
}

// SQL returns the original SQL text with placeholders, unmodified.
func (c Capture) SQL() string { return c.sql }

// Params returns a copy of the ordered parameter bindings.
func (c Capture) Params() []interface{} { return append([]interface{}(nil), c.params...) }

// ElapsedMS returns the elapsed execution time in milliseconds.
func (c Capture) ElapsedMS() float64 { return float64(c.elapsed.Microseconds()) / 1000.0 }

// ConnectionLabel returns the optional connection identifier.
func (c Capture) ConnectionLabel() string { return c.connectionLabel }

// CapturedAt returns when this invocation was recorded, used by the
// profiler to order captures within a batch.
func (c Capture) CapturedAt() time.Time { return c.capturedAt }

// literalPlaceholder matches a single bind placeholder: `?` (MySQL/SQLite)
// or `$1`-style (Postgres). Both are substituted positionally, in order of
// appearance, regardless of marker syntax.
var literalPlaceholder = regexp.MustCompile(`\?|\$\d+`)

// ToInterpolatedSQL substitutes each placeholder, in order, with its bound
// value encoded as a SQL literal: integers and floats unquoted, strings
// single-quoted (with embedded quotes doubled), nil as NULL, bool as 0/1.
func (c Capture) ToInterpolatedSQL() string {
	idx := 0
	return literalPlaceholder.ReplaceAllStringFunc(c.sql, func(string) string {
		if idx >= len(c.params) {
			return "?"
		}
		lit := encodeLiteral(c.params[idx])
		idx++
		return lit
	})
}

func encodeLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return "1"
		}
		return "0"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%v", val)
	default:
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", val), "'", "''") + "'"
	}
}

// stringLiteral matches single-quoted string literals, tolerating escaped
// quotes doubled per SQL convention ('it''s').
var stringLiteral = regexp.MustCompile(`'(?:[^']|'')*'`)

// numericLiteral matches bare integer/decimal literals not already inside
// a string (stringLiteral is stripped first so this is safe).
var numericLiteral = regexp.MustCompile(`\b\d+(\.\d+)?\b`)

// Normalize returns a form where every string and numeric literal is
// replaced by `?`, so that two queries differing only in literal values
// normalize identically. Existing placeholders are left as `?`.
func (c Capture) Normalize() string {
	s := stringLiteral.ReplaceAllString(c.sql, "?")
	s = numericLiteral.ReplaceAllString(s, "?")
	return collapseWhitespace(s)
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
