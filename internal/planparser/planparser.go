// Package planparser decodes EXPLAIN output from MySQL, PostgreSQL, and
// SQLite into the canonical metrics.Metrics feature vector. It never talks
// to a database; internal/driver hands it already-fetched rows, JSON trees,
// or plain text.
//
// Grounded on the teacher's internal/analyzer package, which already decoded
// these three EXPLAIN shapes (MySQL FORMAT=JSON, PostgreSQL FORMAT JSON,
// SQLite's line-oriented EXPLAIN QUERY PLAN) into a flatter
// QueryPlan{Cost, UsesIndex, FullScan} struct. Reworked here to populate the
// richer metrics.Metrics vector per the tabular mapping table in spec.md
// §4.4, and to accept raw tabular rows captured outside a live connection.
package planparser

import "github.com/karimalihussein/querysentinel/internal/metrics"

// Format identifies the shape of EXPLAIN output being parsed.
type Format string

const (
	FormatMySQLJSON     Format = "mysql_json"
	FormatMySQLTabular  Format = "mysql_tabular"
	FormatPostgresJSON  Format = "postgres_json"
	FormatSQLiteText    Format = "sqlite_text"
)

// Parse dispatches to the dialect-specific decoder for format and returns
// the resulting Metrics. raw is the dialect's native EXPLAIN payload: JSON
// bytes for the *JSON formats, a newline-joined plan for FormatSQLiteText.
func Parse(format Format, raw []byte) (metrics.Metrics, error) {
	switch format {
	case FormatMySQLJSON:
		return parseMySQLJSON(raw)
	case FormatPostgresJSON:
		return parsePostgresJSON(raw)
	case FormatSQLiteText:
		return parseSQLiteText(string(raw)), nil
	default:
		return metrics.Metrics{}, &UnsupportedFormatError{Format: format}
	}
}

// ParseTabular ingests tabular EXPLAIN rows (the classic MySQL non-JSON
// EXPLAIN, or rows recovered from logs). It never overrides an already-set
// PrimaryAccessType — the tree/JSON parsers take precedence when both are
// available, per spec.md §4.4.
func ParseTabular(m metrics.Metrics, rows []map[string]interface{}) metrics.Metrics {
	for _, row := range rows {
		m = applyTabularRow(m, row)
	}
	return m
}

// UnsupportedFormatError is returned by Parse for an unrecognized Format.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return "planparser: unsupported format " + string(e.Format)
}
