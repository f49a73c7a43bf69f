package matcher

import (
	"context"
	"time"

	"github.com/malcr/malcr/log"
	"github.com/samber/mo"
)

// Verdict is the outcome of checking one season.
type Verdict int

const (
	// Reject moves on to the next season.
	Reject Verdict = iota
	// Accept takes this season.
	Accept
	// Abandon gives up on the whole series: later seasons air even later.
	Abandon
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case Abandon:
		return "abandon"
	default:
		return "reject"
	}
}

// AirDates lists the air dates of a season's episodes in catalog order.
// It is only called when the season title alone does not decide.
type AirDates func(ctx context.Context) ([]time.Time, error)

// CheckSeason decides whether a season belongs to the entry with the given query
// title and start date. A season named exactly like the query is accepted outright.
// Otherwise the first episode airing within Window of start accepts it, and the
// first episode airing after start+Window abandons the series.
func CheckSeason(ctx context.Context, query, seasonTitle string, start mo.Option[time.Time], airDates AirDates) (Verdict, error) {
	if Normalize(seasonTitle) == Normalize(query) {
		return Accept, nil
	}

	date, ok := start.Get()
	if !ok {
		log.Warnf("No start date for %q, cannot tell season %q apart", query, seasonTitle)
		return Reject, nil
	}

	dates, err := airDates(ctx)
	if err != nil {
		return Reject, err
	}

	for _, aired := range dates {
		if InWindow(aired, date) {
			return Accept, nil
		}
		if aired.After(date.Add(Window)) {
			return Abandon, nil
		}
	}

	return Reject, nil
}

// InWindow reports whether aired is at most Window away from start, either way.
func InWindow(aired, start time.Time) bool {
	diff := aired.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	return diff <= Window
}
