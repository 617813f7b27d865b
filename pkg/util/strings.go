package util

import "strings"

// FoldKey lowercases and trims s for use in case-insensitive lookups and cache keys.
func FoldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
