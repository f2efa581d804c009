// Package strdist measures edit distance between names.
package strdist

import "github.com/hbollon/go-edlib"

// DamerauLevenshtein returns the unrestricted Damerau–Levenshtein distance
// between a and b, counted in runes.
//
// Unlike optimal string alignment, a transposed pair may be edited again, so
// the distance is a metric and DamerauLevenshtein("ca", "abc") == 2.
func DamerauLevenshtein(a, b string) int {
	return edlib.DamerauLevenshteinDistance(a, b)
}

// Similarity is 1 − DL(a, b) / max(|a|, |b|), in [0, 1]. Two empty strings
// are identical.
func Similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(DamerauLevenshtein(a, b))/float64(longest)
}
