package normalization

import "strings"

// ParseInputString trims surrounding whitespace from user-supplied
// input and collapses pure-whitespace values to empty.
func ParseInputString(s string) string {
	return strings.TrimSpace(s)
}

// ParseEmail lowercases in addition to trimming; email lookups are
// case-insensitive everywhere.
func ParseEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
