package logging

import "unicode/utf8"

// Truncate shortens s to at most maxLen bytes for log output, backing off to
// a rune boundary, and marks the cut with "...".
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
