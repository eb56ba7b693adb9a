package analyze

import (
	"strings"
)

const (
	minPointWords = 3

	// Two points whose content tokens overlap at or above this ratio are
	// considered near-duplicates.
	duplicateOverlap = 0.8
)

// validPoint reports whether a cleaned candidate may join the accepted set:
// non-empty, inside the word-count bounds, and not a near-duplicate of a
// point already accepted in this call.
func validPoint(text string, accepted []KeyPoint) bool {
	words := strings.Fields(text)
	if len(words) < minPointWords || len(words) > maxPointWords {
		return false
	}
	for _, point := range accepted {
		if nearDuplicate(text, point.Text) {
			return false
		}
	}
	return true
}

func nearDuplicate(a, b string) bool {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return false
	}

	shared := 0
	for token := range tokensA {
		if tokensB[token] {
			shared++
		}
	}

	smaller := len(tokensA)
	if len(tokensB) < smaller {
		smaller = len(tokensB)
	}
	return float64(shared)/float64(smaller) >= duplicateOverlap
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range tokenize(text) {
		if !stopwords[token] {
			set[token] = true
		}
	}
	return set
}
