package utils

import "strings"

// MaxNgramLength is the longest token run emitted by Ngrams.
const MaxNgramLength = 3

// Ngrams returns every contiguous run of 1 to maxLen whitespace-separated
// tokens of text, shortest runs first and left to right within a length.
// Duplicates are kept so that iteration order stays deterministic.
func Ngrams(text string, maxLen int) []string {
	tokens := strings.Fields(text)
	n := len(tokens)

	if n == 0 || maxLen <= 0 {
		return nil
	}

	limit := min(n, maxLen)
	result := make([]string, 0, NgramCount(n, maxLen))

	for k := 1; k <= limit; k++ {
		for i := 0; i+k <= n; i++ {
			result = append(result, strings.Join(tokens[i:i+k], " "))
		}
	}

	return result
}

// NgramCount returns how many candidates Ngrams emits for n tokens.
func NgramCount(n, maxLen int) int {
	total := 0
	for k := 1; k <= min(n, maxLen); k++ {
		total += n - k + 1
	}

	return total
}
