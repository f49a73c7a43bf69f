// Package report summarizes a sync run and keeps the latest summary on disk.
package report

import (
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Report counts what a run did. Unresolved keeps the query titles printed on stdout.
type Report struct {
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	DryRun         bool      `json:"dry_run"`
	Entries        int       `json:"entries"`
	Resolved       int       `json:"resolved"`
	SeasonsMarked  int       `json:"seasons_marked"`
	EpisodesMarked int       `json:"episodes_marked"`
	MarkFailures   int       `json:"mark_failures"`
	EntryErrors    int       `json:"entry_errors"`
	Unresolved     []string  `json:"unresolved"`
	Aborted        string    `json:"aborted,omitempty"`
}

// New starts a report now.
func New(dryRun bool) *Report {
	return &Report{
		StartedAt:  time.Now(),
		DryRun:     dryRun,
		Unresolved: []string{},
	}
}

// Finish stamps the end of the run. A non-nil err is recorded as the reason the run stopped early.
func (r *Report) Finish(err error) *Report {
	r.FinishedAt = time.Now()
	if err != nil {
		r.Aborted = err.Error()
	}
	return r
}

// Duration of the run, zero while it is still going.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Filter returns the unresolved titles fuzzy-matching query, best first.
// An empty query returns them all in run order.
func (r *Report) Filter(query string) []string {
	if query == "" {
		return r.Unresolved
	}

	ranks := fuzzy.RankFindNormalizedFold(query, r.Unresolved)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
		return a.Distance - b.Distance
	})

	return lo.Map(ranks, func(rank fuzzy.Rank, _ int) string {
		return rank.Target
	})
}
