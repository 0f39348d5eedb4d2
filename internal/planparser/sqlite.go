package planparser

import (
	"regexp"
	"strings"

	"github.com/karimalihussein/querysentinel/internal/metrics"
)

var (
	sqliteScanRe   = regexp.MustCompile(`(?i)^SCAN\s+(?:TABLE\s+)?(\S+)(.*)$`)
	sqliteSearchRe = regexp.MustCompile(`(?i)^SEARCH\s+(?:TABLE\s+)?(\S+)(.*)$`)
	sqliteIndexRe  = regexp.MustCompile(`(?i)USING\s+(COVERING\s+)?INDEX\s+(\S+)`)
	sqlitePKRe     = regexp.MustCompile(`(?i)USING\s+(?:INTEGER\s+)?PRIMARY\s+KEY`)
	sqliteTempRe   = regexp.MustCompile(`(?i)USE\s+TEMP\s+B-TREE\s+FOR\s+(ORDER\s+BY|GROUP\s+BY|DISTINCT)`)
)

// parseSQLiteText decodes the plain-text "detail" lines of an
// `EXPLAIN QUERY PLAN` result — SQLite does not offer a JSON form, so this
// is the only shape for that dialect. Each line names one table access or
// one temp structure SQLite introduced for sorting/grouping.
func parseSQLiteText(text string) metrics.Metrics {
	m := metrics.New()

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if sqliteTempRe.MatchString(line) {
			m.HasTempTable = true
			if strings.Contains(strings.ToUpper(line), "ORDER BY") {
				m.HasFilesort = true
			}
			continue
		}

		if match := sqliteSearchRe.FindStringSubmatch(line); match != nil {
			applySQLiteAccess(&m, match[1], match[2], true)
			continue
		}
		if match := sqliteScanRe.FindStringSubmatch(line); match != nil {
			applySQLiteAccess(&m, match[1], match[2], false)
			continue
		}
	}

	return m
}

func applySQLiteAccess(m *metrics.Metrics, table, detail string, isSearch bool) {
	if table != "" && !containsString(m.TablesAccessed, table) {
		m.TablesAccessed = append(m.TablesAccessed, table)
	}

	var access metrics.AccessType
	var complexity metrics.Complexity
	indexed := false

	switch {
	case sqlitePKRe.MatchString(detail):
		access, complexity, indexed = metrics.AccessSingleRow, metrics.ComplexityConstant, true
	case sqliteIndexRe.MatchString(detail):
		sub := sqliteIndexRe.FindStringSubmatch(detail)
		if len(sub) == 3 && sub[2] != "" && !containsString(m.IndexesUsed, sub[2]) {
			m.IndexesUsed = append(m.IndexesUsed, sub[2])
		}
		if strings.TrimSpace(sub[1]) != "" {
			m.HasCoveringIndex = true
		}
		if isSearch {
			access, complexity, indexed = metrics.AccessIndexLookup, metrics.ComplexityLogN, true
		} else {
			access, complexity, indexed = metrics.AccessIndexScan, metrics.ComplexityLinear, true
		}
	case isSearch:
		access, complexity, indexed = metrics.AccessIndexLookup, metrics.ComplexityLogN, true
	default:
		access, complexity, indexed = metrics.AccessTableScan, metrics.ComplexityLinear, false
		m.HasTableScan = true
	}

	if m.PrimaryAccessType == metrics.AccessUnknown || rankWorse(access, m.PrimaryAccessType) {
		m.PrimaryAccessType = access
		if complexity.Rank() > m.Complexity.Rank() {
			m.Complexity = complexity
		}
		m.IsIndexBacked = indexed
	}

	m.NestedLoopDepth++
}
