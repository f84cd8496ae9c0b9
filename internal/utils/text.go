package utils

import "strings"

// TruncateWithEllipsis shortens s to at most max runes. When anything is
// cut, a trailing "..." marker is appended; a string of exactly max runes
// comes back unchanged.
func TruncateWithEllipsis(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// Normalize lowercases s and strips leading/trailing whitespace. Both the
// answer matcher and its table apply this before any comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
