package utils

import "strings"

// Normalize lowercases and trims enum-like request values.
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
