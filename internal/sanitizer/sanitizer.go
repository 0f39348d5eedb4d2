// Package sanitizer normalizes raw SQL text before any downstream component
// inspects it: comments are stripped (except optimizer hints), whitespace is
// collapsed, and trailing statement terminators are removed.
//
// Grounded on the teacher's internal/util regex-driven string transforms,
// generalized from a denylist stripper into a comment/whitespace normalizer.
package sanitizer

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// optimizerHint matches /*+ ... */ hint comments, which must survive
	// sanitization bit-for-bit.
	optimizerHint = regexp.MustCompile(`(?s)/\*\+.*?\*/`)
	// blockComment matches any other /* ... */ comment, including multi-line.
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment  = regexp.MustCompile(`(--|#)[^\n]*`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Sanitize returns the canonical form of sql: comments stripped (optimizer
// hints preserved bit-for-bit), whitespace runs collapsed to a single
// space, trimmed, and trailing ';' characters removed. Empty or
// comment-only input returns the empty string.
func Sanitize(sql string) string {
	if strings.TrimSpace(sql) == "" {
		return ""
	}

	var hints []string
	withoutHints := optimizerHint.ReplaceAllStringFunc(sql, func(hint string) string {
		hints = append(hints, hint)
		return placeholderFor(len(hints) - 1)
	})

	stripped := blockComment.ReplaceAllString(withoutHints, " ")
	stripped = lineComment.ReplaceAllString(stripped, " ")

	collapsed := strings.TrimSpace(whitespace.ReplaceAllString(stripped, " "))

	for i, hint := range hints {
		collapsed = strings.Replace(collapsed, placeholderFor(i), hint, 1)
	}

	for {
		next := strings.TrimSpace(strings.TrimRight(collapsed, ";"))
		if next == collapsed {
			break
		}
		collapsed = next
	}

	return collapsed
}

func placeholderFor(i int) string {
	return "\x00HINT" + strconv.Itoa(i) + "\x00"
}
