package utils

import "strings"

// Clip cuts s to its first n runes.
func Clip(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Truncate shortens s to at most maxRunes runes and marks the cut with "...".
// Multi-byte characters are never split.
func Truncate(s string, maxRunes int) string {
	clipped := Clip(s, maxRunes)
	if len(clipped) == len(s) {
		return s
	}
	return clipped + "..."
}

// OneLine collapses every run of whitespace, newlines included, to a single
// space so upstream bodies fit on one log or error line.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
