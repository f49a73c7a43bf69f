package matcher

import (
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
)

// maxTableRune is the last rune the levenshtein lookup table can index.
const maxTableRune = 0xFFFF

// Distance is the edit distance between a and b, counted in runes.
// Strings holding runes outside the Basic Multilingual Plane, emoji for instance,
// go through a plain dynamic-programming path: the fast implementation indexes
// a table that stops at U+FFFF.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if !beyondTable(ra) && !beyondTable(rb) {
		return levenshtein.Distance(a, b)
	}
	return runeDistance(ra, rb)
}

func beyondTable(runes []rune) bool {
	return lo.SomeBy(runes, func(r rune) bool {
		return r > maxTableRune
	})
}

func runeDistance(a, b []rune) int {
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
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
