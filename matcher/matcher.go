// Package matcher decides whether a catalog series or season is the title a list entry refers to.
package matcher

import (
	"strings"
	"time"

	"github.com/malcr/malcr/log"
	"github.com/samber/mo"
)

const (
	// Threshold is the largest normalized distance a series title may have.
	Threshold = 0.125

	// warnScore is where accepted-but-inexact matches start being reported.
	warnScore = 0.01

	// Window is how far an episode may air from the list entry's start date.
	Window = 60 * 24 * time.Hour
)

// Normalize lowercases and trims a title.
func Normalize(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// QueryTitle is the search text for an entry: its English title when it has one,
// its canonical title otherwise.
func QueryTitle(title string, english mo.Option[string]) string {
	if en, ok := english.Get(); ok && strings.TrimSpace(en) != "" {
		return Normalize(en)
	}
	return Normalize(title)
}

// Score is the edit distance between candidate and the same-length prefix of query,
// divided by the candidate's length. ok is false when no prefix can be taken.
// Lengths are counted in runes.
func Score(candidate, query string) (score float64, ok bool) {
	c, q := []rune(Normalize(candidate)), []rune(Normalize(query))
	if len(c) == 0 || len(q) < len(c) {
		return 0, false
	}

	distance := Distance(string(c), string(q[:len(c)]))
	return float64(distance) / float64(len(c)), true
}

// SameTitle reports whether candidate is a near prefix of query.
// Catalog series names usually lack the season suffix list titles carry.
func SameTitle(candidate, query string) bool {
	score, ok := Score(candidate, query)
	if !ok {
		return false
	}

	if score >= warnScore {
		log.WithFields(map[string]any{
			"query":     Normalize(query),
			"candidate": Normalize(candidate),
			"score":     score,
		}).Warn("Inexact title match")
	}

	return score <= Threshold
}
