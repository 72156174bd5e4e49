// Package similarity scores how alike two strings are.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Ratio returns 1 - dist/maxLen, where dist is the Levenshtein distance
// between a and b in characters. The result is in [0,1], symmetric, 1 for
// identical strings and 0 when the strings share no characters.
func Ratio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// FoldedRatio is Ratio over the lower-cased inputs.
func FoldedRatio(a, b string) float64 {
	return Ratio(strings.ToLower(a), strings.ToLower(b))
}
