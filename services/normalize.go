package services

import "strings"

// Normalize derives the lookup key of a label: trimmed and lower-cased.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
