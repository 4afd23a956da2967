package util

import "strings"

// Normalize trims and lowercases, used for every title and email comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
