package utils_test

import (
	"testing"
	"unicode/utf8"

	"github.com/hllmod/reportbot/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestCompressAllWhitespace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello world", utils.CompressAllWhitespace("hello\n\n  world  \n"))
	assert.Empty(t, utils.CompressAllWhitespace("   \t  "))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short text unchanged", input: "hello", maxLen: 10, want: "hello"},
		{name: "exact length unchanged", input: "hello", maxLen: 5, want: "hello"},
		{name: "cut on whitespace", input: "hello brave new world", maxLen: 12, want: "hello brave…"},
		{name: "single long word", input: "abcdefghij", maxLen: 5, want: "abcd…"},
		{name: "zero disables", input: "hello", maxLen: 0, want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := utils.Truncate(tt.input, tt.maxLen)
			assert.Equal(t, tt.want, got)

			if tt.maxLen > 0 {
				assert.LessOrEqual(t, utf8.RuneCountInString(got), tt.maxLen)
			}
		})
	}
}

func TestFirstWord(t *testing.T) {
	t.Parallel()

	first, rest := utils.FirstWord("  able redet  nicht ")
	assert.Equal(t, "able", first)
	assert.Equal(t, "redet  nicht", rest)

	first, rest = utils.FirstWord("single")
	assert.Equal(t, "single", first)
	assert.Empty(t, rest)
}
