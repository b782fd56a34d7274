// Package guardrails holds the tone, disclosure and eligibility checks applied to user-facing output.
package guardrails

import (
	"regexp"
	"strings"
)

// shamePatterns match judgmental language. Matching is case-insensitive on word boundaries.
var shamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\byou(?:'|’)?re\s+overspending\b`),
	regexp.MustCompile(`(?i)\bbad\s+financial\s+habits?\b`),
	regexp.MustCompile(`(?i)\birresponsible\b`),
	regexp.MustCompile(`(?i)\bcareless\b`),
	regexp.MustCompile(`(?i)\bwasting\s+money\b`),
	regexp.MustCompile(`(?i)\bpoor\s+choices?\b`),
	regexp.MustCompile(`(?i)\bfinancial\s+mistakes?\b`),
	regexp.MustCompile(`(?i)\bbad\s+decisions?\b`),
	regexp.MustCompile(`(?i)\bfoolish\b`),
	regexp.MustCompile(`(?i)\bstupid\b`),
	regexp.MustCompile(`(?i)\breckless\b`),
}

// CheckTone reports whether text is free of shaming language.
// Violations are the lower-cased matched phrases, in pattern order.
func CheckTone(text string) (bool, []string) {
	if strings.TrimSpace(text) == "" {
		return true, nil
	}

	var violations []string
	for _, pattern := range shamePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			violations = append(violations, strings.ToLower(match))
		}
	}
	return len(violations) == 0, violations
}
