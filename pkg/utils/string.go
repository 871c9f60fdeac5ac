package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// MultipleSpaces matches any sequence of whitespace (including newlines).
var MultipleSpaces = regexp.MustCompile(`\s+`)

// Ellipsis is appended to text cut by Truncate.
const Ellipsis = "…"

// CompressAllWhitespace replaces all whitespace sequences (including newlines) with a single space.
// This is useful for cases where you want to completely normalize whitespace.
func CompressAllWhitespace(s string) string {
	return strings.TrimSpace(MultipleSpaces.ReplaceAllString(s, " "))
}

// Truncate shortens s to at most maxLen runes. When s is too long it is cut on
// the last whitespace boundary that leaves room for the ellipsis, which is
// then appended. A single overlong word is cut mid-word.
func Truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s
	}

	if maxLen == 1 {
		return Ellipsis
	}

	cut := runes[:maxLen-1]

	// Back off to the last whitespace unless the cut already ends a word
	if !unicode.IsSpace(runes[maxLen-1]) {
		for i := len(cut) - 1; i > 0; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}

	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + Ellipsis
}

// FirstWord splits s into its first whitespace-delimited token and the trimmed remainder.
func FirstWord(s string) (string, string) {
	s = strings.TrimSpace(s)

	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx == -1 {
		return s, ""
	}

	return s[:idx], strings.TrimSpace(s[idx:])
}
