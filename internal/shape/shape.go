// Package shape extracts structural features from sanitized SQL text: the
// tables it touches, which clauses are present, whether it is an
// intentional full scan, and common anti-patterns. It never connects to a
// database; it is a pure function over the sanitized statement.
//
// Grounded on the teacher's internal/optimizer WHERE/JOIN/SELECT-column
// extraction helpers (ParseWhereClause, extractJoinClauses,
// extractSelectColumns, extractTableName), generalized to surface clause
// presence booleans and anti-pattern detection rather than feed a single
// optimizer.Suggest pass.
package shape

import (
	"regexp"
	"strings"
)

// Shape is the structural feature set extracted from one sanitized SQL
// statement.
type Shape struct {
	Tables []string

	HasWhere   bool
	HasJoin    bool
	HasGroupBy bool
	HasHaving  bool
	HasOrderBy bool
	HasLimit   bool

	IsIntentionalFullScan bool
	AntiPatterns          []string
}

var (
	fromTableRe    = regexp.MustCompile(`(?i)\bfrom\s+` + identifierPattern + `(?:\s+(?:as\s+)?` + aliasPattern + `)?`)
	joinTableRe    = regexp.MustCompile(`(?i)\bjoin\s+` + identifierPattern + `(?:\s+(?:as\s+)?` + aliasPattern + `)?`)
	whereRe        = regexp.MustCompile(`(?i)\bwhere\b`)
	joinRe         = regexp.MustCompile(`(?i)\bjoin\b`)
	groupByRe      = regexp.MustCompile(`(?i)\bgroup\s+by\b`)
	havingRe       = regexp.MustCompile(`(?i)\bhaving\b`)
	orderByRe      = regexp.MustCompile(`(?i)\border\s+by\b`)
	limitRe        = regexp.MustCompile(`(?i)\blimit\b`)
	selectStarRe   = regexp.MustCompile(`(?i)^select\s+\*\s+from\b`)
	leadingLikeRe  = regexp.MustCompile(`(?i)\blike\s+'%`)
	funcOnColumnRe = regexp.MustCompile(`(?i)\b(?:upper|lower|date|year|month|trim|cast|convert|substring|concat)\s*\(\s*([a-z_][a-z0-9_.]*)\s*\)\s*(?:=|>|<|>=|<=|<>|!=)`)
	implicitCastRe = regexp.MustCompile(`(?i)\b([a-z_][a-z0-9_]*)\s*=\s*'[0-9]+'`)
)

const identifierPattern = "`?([a-zA-Z_][a-zA-Z0-9_]*)`?"
const aliasPattern = "`?([a-zA-Z_][a-zA-Z0-9_]*)`?"

// Parse extracts a Shape from sanitized SQL. sql must already be passed
// through internal/sanitizer — this function does not strip comments.
func Parse(sql string) Shape {
	s := Shape{
		Tables:     extractTables(sql),
		HasWhere:   whereRe.MatchString(sql),
		HasJoin:    joinRe.MatchString(sql),
		HasGroupBy: groupByRe.MatchString(sql),
		HasHaving:  havingRe.MatchString(sql),
		HasOrderBy: orderByRe.MatchString(sql),
		HasLimit:   limitRe.MatchString(sql),
	}

	s.IsIntentionalFullScan = isIntentionalFullScan(sql, s)
	s.AntiPatterns = detectAntiPatterns(sql)

	return s
}

// extractTables collects table names (tolerant of aliases and backtick
// quoting) from FROM and JOIN clauses, in first-seen order, deduplicated.
func extractTables(sql string) []string {
	seen := make(map[string]bool)
	var tables []string

	for _, m := range fromTableRe.FindAllStringSubmatch(sql, -1) {
		if table := m[1]; table != "" && !seen[table] {
			seen[table] = true
			tables = append(tables, table)
		}
	}
	for _, m := range joinTableRe.FindAllStringSubmatch(sql, -1) {
		if table := m[1]; table != "" && !seen[table] {
			seen[table] = true
			tables = append(tables, table)
		}
	}

	return tables
}

// isIntentionalFullScan reports whether sql is a SELECT with none of
// WHERE/JOIN/GROUP BY/HAVING/ORDER BY — a terminal LIMIT is permitted.
// UPDATE/DELETE statements are never intentional scans.
func isIntentionalFullScan(sql string, s Shape) bool {
	trimmed := strings.TrimSpace(sql)
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return false
	}
	return !s.HasWhere && !s.HasJoin && !s.HasGroupBy && !s.HasHaving && !s.HasOrderBy
}

// detectAntiPatterns surfaces common SQL smells: SELECT *, leading-wildcard
// LIKE, function calls wrapping an indexed column in WHERE, and implicit
// string-to-numeric casts.
func detectAntiPatterns(sql string) []string {
	var patterns []string

	if selectStarRe.MatchString(sql) {
		patterns = append(patterns, "select_star")
	}
	if leadingLikeRe.MatchString(sql) {
		patterns = append(patterns, "leading_wildcard_like")
	}
	if funcOnColumnRe.MatchString(sql) {
		patterns = append(patterns, "function_on_indexed_column")
	}
	if implicitCastRe.MatchString(sql) {
		patterns = append(patterns, "implicit_cast")
	}

	return patterns
}
