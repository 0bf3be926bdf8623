// Package query holds the query-processing stages that run before
// retrieval: deterministic normalization, best-effort LLM rewriting,
// and optional LLM expansion. The two LLM stages never fail: on any
// error they return the input they were given.
package query

import (
	"regexp"
	"strings"
)

var (
	disallowedPattern = regexp.MustCompile(`[^\w\s-]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize trims the query, strips characters outside word characters,
// whitespace and hyphens, and collapses runs of whitespace. Purely
// deterministic, no external calls.
func Normalize(q string) string {
	clean := disallowedPattern.ReplaceAllString(q, "")
	clean = whitespacePattern.ReplaceAllString(clean, " ")
	return strings.TrimSpace(clean)
}
