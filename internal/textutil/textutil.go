package textutil

import (
	"regexp"
	"strings"
)

// wordStripPattern matches everything except letters, digits, internal
// apostrophes, and hyphens. Apostrophes are kept so "he'll" does not
// collapse into "hell". Stripped runs become spaces so a multi-token
// phrase keeps its word boundaries.
var wordStripPattern = regexp.MustCompile(`[^a-zA-Z0-9'-]+`)

// lineStripPattern removes punctuation from a full line of text while
// preserving word boundaries and apostrophes.
var lineStripPattern = regexp.MustCompile(`[^\w\s']`)

// NormalizeWord lowercases a transcribed token and strips punctuation,
// keeping internal apostrophes and hyphens. Compound phrase tokens
// ("god damn") keep their single internal space.
func NormalizeWord(word string) string {
	word = wordStripPattern.ReplaceAllString(word, " ")
	fields := strings.Fields(strings.ToLower(word))
	for i, field := range fields {
		fields[i] = strings.Trim(field, "'")
	}
	return strings.Join(fields, " ")
}

// NormalizeLine lowercases a line of subtitle text, removes punctuation
// except apostrophes, and collapses runs of whitespace (including newlines)
// to single spaces.
func NormalizeLine(text string) string {
	text = lineStripPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// ContainsWord reports whether needle occurs in haystack on word boundaries.
// Both arguments must already be normalized. Needle may span multiple words.
func ContainsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}
