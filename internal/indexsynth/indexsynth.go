// Package indexsynth proposes composite indexes from a query's WHERE
// predicates, JOIN equalities, and ORDER BY columns.
//
// Directly grounded on the teacher's internal/optimizer WHERE/JOIN column
// extraction (ParseWhereClause, extractJoinColumns) and covering-index
// analysis (AnalyzeCoveringIndex, IndexRecommendation.IndexName),
// generalized to order equality-before-range-before-sort columns, cap one
// range column per proposal, de-duplicate by (table, columns), and render
// DDL through internal/dialects.QuoteIdentifier instead of one hard-coded
// syntax.
package indexsynth

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/karimalihussein/querysentinel/internal/dialects"
)

// ImpactClass is a coarse estimate of how much a proposed index would help.
type ImpactClass string

const (
	ImpactHigh   ImpactClass = "high"
	ImpactMedium ImpactClass = "medium"
	ImpactLow    ImpactClass = "low"
)

// Proposal is one composite index recommendation.
type Proposal struct {
	Table       string
	Columns     []string
	Rationale   string
	Impact      ImpactClass
	SuggestedDDL string
}

var (
	equalityRe = regexp.MustCompile(`(?i)\b([a-z_][a-z0-9_]*)\s*=\s*(?:\?|\$\d+|'[^']*'|[0-9]+)`)
	rangeRe    = regexp.MustCompile(`(?i)\b([a-z_][a-z0-9_]*)\s*(?:>=|<=|>|<|between)\s`)
	joinEqRe   = regexp.MustCompile(`(?i)\bon\s+[a-z_][a-z0-9_]*\.([a-z_][a-z0-9_]*)\s*=\s*[a-z_][a-z0-9_]*\.([a-z_][a-z0-9_]*)`)
	orderByColsRe = regexp.MustCompile(`(?i)order\s+by\s+([a-z0-9_,.\s]+?)(?:\s+limit\b|$)`)
)

// Synthesize proposes composite indexes for sql against the given primary
// table. It returns nil when intentionalScan is true (no index is ever
// proposed for a deliberate full read), per spec.md §4.9.
func Synthesize(sql, table string, intentionalScan bool, driverName string) []Proposal {
	if intentionalScan || table == "" {
		return nil
	}

	equality := extractColumns(equalityRe, sql, 1)
	rangeCols := extractColumns(rangeRe, sql, 1)
	orderCols := extractOrderByColumns(sql)

	for _, m := range joinEqRe.FindAllStringSubmatch(sql, -1) {
		equality = appendUnique(equality, m[1])
		equality = appendUnique(equality, m[2])
	}

	if len(rangeCols) > 1 {
		rangeCols = rangeCols[:1]
	}

	columns := dedupeAcross(equality, rangeCols, orderCols)
	if len(columns) == 0 {
		return nil
	}

	proposal := Proposal{
		Table:     table,
		Columns:   columns,
		Rationale: rationaleFor(equality, rangeCols, orderCols),
		Impact:    impactFor(len(equality), len(rangeCols)),
	}
	proposal.SuggestedDDL = generateDDL(proposal, driverName)

	return dedupeProposals([]Proposal{proposal})
}

func extractColumns(re *regexp.Regexp, sql string, group int) []string {
	var cols []string
	for _, m := range re.FindAllStringSubmatch(sql, -1) {
		cols = appendUnique(cols, strings.ToLower(m[group]))
	}
	return cols
}

func extractOrderByColumns(sql string) []string {
	m := orderByColsRe.FindStringSubmatch(sql)
	if m == nil {
		return nil
	}
	var cols []string
	for _, raw := range strings.Split(m[1], ",") {
		col := strings.ToLower(strings.TrimSpace(raw))
		col = strings.Fields(col)[0] // drop ASC/DESC
		if col != "" {
			cols = appendUnique(cols, col)
		}
	}
	return cols
}

func appendUnique(xs []string, x string) []string {
	for _, existing := range xs {
		if existing == x {
			return xs
		}
	}
	return append(xs, x)
}

// dedupeAcross orders equality columns first, then at most one range
// column, then sort columns, skipping any column already placed.
func dedupeAcross(equality, rangeCols, orderCols []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, group := range [][]string{equality, rangeCols, orderCols} {
		for _, col := range group {
			if seen[col] {
				continue
			}
			seen[col] = true
			out = append(out, col)
		}
	}
	return out
}

func rationaleFor(equality, rangeCols, orderCols []string) string {
	var parts []string
	if len(equality) > 0 {
		parts = append(parts, fmt.Sprintf("equality filter on %s", strings.Join(equality, ", ")))
	}
	if len(rangeCols) > 0 {
		parts = append(parts, fmt.Sprintf("range filter on %s", strings.Join(rangeCols, ", ")))
	}
	if len(orderCols) > 0 {
		parts = append(parts, fmt.Sprintf("sort on %s", strings.Join(orderCols, ", ")))
	}
	return "Covers " + strings.Join(parts, "; ")
}

func impactFor(equalityCount, rangeCount int) ImpactClass {
	switch {
	case equalityCount >= 2:
		return ImpactHigh
	case equalityCount == 1 || rangeCount == 1:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

func generateDDL(p Proposal, driverName string) (ddl string) {
	defer func() {
		if recover() != nil {
			ddl = ""
		}
	}()

	dialect := dialects.GetDialect(driverName)
	quoted := make([]string, len(p.Columns))
	for i, col := range p.Columns {
		quoted[i] = dialect.QuoteIdentifier(col)
	}
	indexName := "idx_" + p.Table + "_" + strings.Join(p.Columns, "_")
	return fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
		dialect.QuoteIdentifier(indexName), dialect.QuoteIdentifier(p.Table), strings.Join(quoted, ", "))
}

// dedupeProposals removes duplicate proposals keyed by (table, columns).
func dedupeProposals(proposals []Proposal) []Proposal {
	seen := make(map[string]bool)
	var out []Proposal
	for _, p := range proposals {
		key := p.Table + "|" + strings.Join(p.Columns, ",")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
