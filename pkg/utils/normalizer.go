package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// markupReplacer removes chat formatting markers. Longer markers come first
	// so that "**" is not split into two single asterisks.
	markupReplacer = strings.NewReplacer("**", "", "__", "", "*", "", "~~", "", "`", "")

	// bracketPattern matches any bracketed span, non-greedy.
	bracketPattern = regexp.MustCompile(`\[.*?\]`)

	// squareTagPattern matches clan tags like [ABC] or [x].
	squareTagPattern = regexp.MustCompile(`\[[^\]]{1,4}\]`)

	// pipeTagPattern matches clan tags like |ABC| or |x|.
	pipeTagPattern = regexp.MustCompile(`\|[^|]{1,4}\|`)

	// nonWordPattern matches anything that is not a letter, digit, underscore or whitespace.
	nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// Lower lower-cases s using Unicode case mapping rules.
// A new caser is created per call because cases.Caser is not safe for concurrent use.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// StripMarkup removes bold, underline, italic, strikethrough and code markers
// and lower-cases the result. The replacer runs until the text stops changing
// so that the function is idempotent for inputs like "*_*_".
func StripMarkup(s string) string {
	for {
		next := markupReplacer.Replace(s)
		if next == s {
			break
		}

		s = next
	}

	return Lower(s)
}

// StripBrackets removes every [...] span from s.
func StripBrackets(s string) string {
	return bracketPattern.ReplaceAllString(s, "")
}

// StripClanTags removes [xx] and |xx| style clan tags (1-4 characters), the
// literal "i|i" and any remaining punctuation, then trims the result.
func StripClanTags(s string) string {
	s = squareTagPattern.ReplaceAllString(s, "")
	s = pipeTagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "i|i", "")
	s = nonWordPattern.ReplaceAllString(s, "")

	return strings.TrimSpace(s)
}

// StripPlayerNames removes every whole-word, case-insensitive occurrence of the
// given names from s and collapses the remaining whitespace.
//
// A word character is a Unicode letter, digit or underscore. Boundaries are
// only enforced on sides of a name that end in a word character.
func StripPlayerNames(s string, names []string) string {
	if s == "" || len(names) == 0 {
		return CompressAllWhitespace(s)
	}

	text := []rune(s)

	for _, name := range names {
		needle := []rune(strings.TrimSpace(name))
		if len(needle) == 0 {
			continue
		}

		for i, r := range needle {
			needle[i] = unicode.ToLower(r)
		}

		text = removeWord(text, needle)
	}

	return CompressAllWhitespace(string(text))
}

// removeWord blanks out every whole-word occurrence of needle in text.
func removeWord(text, needle []rune) []rune {
	checkStart := isWordRune(needle[0])
	checkEnd := isWordRune(needle[len(needle)-1])

	for i := 0; i+len(needle) <= len(text); {
		if !hasFoldedPrefix(text[i:], needle) {
			i++
			continue
		}

		end := i + len(needle)
		if (checkStart && i > 0 && isWordRune(text[i-1])) ||
			(checkEnd && end < len(text) && isWordRune(text[end])) {
			i++
			continue
		}

		for j := i; j < end; j++ {
			text[j] = ' '
		}

		i = end
	}

	return text
}

// hasFoldedPrefix reports whether text starts with the lower-cased needle.
func hasFoldedPrefix(text, needle []rune) bool {
	for i, r := range needle {
		if unicode.ToLower(text[i]) != r {
			return false
		}
	}

	return true
}

// isWordRune reports whether r counts as a word character.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
