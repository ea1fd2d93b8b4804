// Package util provides shared utility functions used across the codebase.
package util

// Clip truncates a string to n runes, adding "..." when anything was
// cut. Console previews and prompt embeddings both clip this way.
func Clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
