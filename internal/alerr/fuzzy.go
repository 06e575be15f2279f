package alerr

import (
	"fmt"
	"strings"
)

// levenshteinDistance computes the rune-level edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// FindClosestMatch returns the closest option within an edit distance of 3.
// Comparison ignores case, so "singlelinetext" still finds "singleLineText".
func FindClosestMatch(input string, options []string) (string, bool) {
	const maxDistance = 3

	needle := strings.ToLower(input)
	bestMatch := ""
	bestDist := maxDistance + 1

	for _, opt := range options {
		d := levenshteinDistance(needle, strings.ToLower(opt))
		if d < bestDist {
			bestDist = d
			bestMatch = opt
		}
	}

	if bestDist <= maxDistance {
		return bestMatch, true
	}
	return "", false
}

// SuggestSimilar returns a "did you mean 'X'?" string if a close match is found,
// or an empty string otherwise.
func SuggestSimilar(input string, options []string) string {
	if match, ok := FindClosestMatch(input, options); ok {
		return fmt.Sprintf("did you mean '%s'?", match)
	}
	return ""
}
