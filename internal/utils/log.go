package utils

import "strings"

// TruncateForLog turns s into a single-line preview of at most limit runes.
// Runs of whitespace, newlines included, collapse into one space so that
// resume and prompt previews stay on one log line.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
