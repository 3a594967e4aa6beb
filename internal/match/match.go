// Package match scores the similarity of header names so template fields
// can be auto-matched to source columns without touching the network.
package match

import (
	"strings"
	"unicode"
)

// NormalizeHeader prepares a header cell for comparison: lower-cased, with
// separators and punctuation stripped. "Nom Complet", "nom_complet" and
// "nom-complet" all normalize to "nomcomplet".
func NormalizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Levenshtein computes the edit distance between two strings using two
// rolling rows, O(len(a) * len(b)) time and O(min) space.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Keep a as the shorter string.
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[i] = min3(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(a)]
}

// Score returns a similarity between 0 and 1 for two header names after
// normalization. 1.0 means identical; two empty headers never match.
func Score(a, b string) float64 {
	normA := NormalizeHeader(a)
	normB := NormalizeHeader(b)
	if normA == "" || normB == "" {
		return 0
	}
	maxLen := max(len(normA), len(normB))
	return 1.0 - float64(Levenshtein(normA, normB))/float64(maxLen)
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
