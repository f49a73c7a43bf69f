// Package reconcile walks the watch list and marks on the streamer what the tracker says was watched.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/malcr/malcr/crunchyroll"
	"github.com/malcr/malcr/log"
	"github.com/malcr/malcr/mal"
	"github.com/malcr/malcr/matcher"
	"github.com/malcr/malcr/report"
	"github.com/samber/lo"
)

// Tracker is where the watch list comes from.
type Tracker interface {
	FetchList(ctx context.Context) ([]mal.Entry, error)
}

// Streamer is where progress is written.
type Streamer interface {
	Search(ctx context.Context, query string) iter.Seq2[crunchyroll.Series, error]
	Seasons(ctx context.Context, series crunchyroll.Series) ([]crunchyroll.Season, error)
	Episodes(ctx context.Context, season crunchyroll.Season) ([]crunchyroll.Episode, error)
	Mark(ctx context.Context, contentID string) error
}

// Driver processes entries one at a time, in the order given.
// It is not safe for concurrent use.
type Driver struct {
	streamer Streamer
	out      io.Writer
	dryRun   bool
	treated  TreatedSet
}

// New returns a driver printing unresolved titles to out. With dryRun set,
// marks are logged instead of sent.
func New(streamer Streamer, out io.Writer, dryRun bool) *Driver {
	return &Driver{
		streamer: streamer,
		out:      out,
		dryRun:   dryRun,
		treated:  TreatedSet{},
	}
}

// Treated is the set of seasons marked so far.
func (d *Driver) Treated() TreatedSet {
	return d.treated
}

// Sync fetches the list from tracker and runs it.
func (d *Driver) Sync(ctx context.Context, tracker Tracker) (*report.Report, error) {
	entries, err := tracker.FetchList(ctx)
	if err != nil {
		return report.New(d.dryRun).Finish(err), fmt.Errorf("fetch list: %w", err)
	}

	return d.Run(ctx, entries)
}

// Run processes entries. Per-entry failures are logged and counted; only a
// cancelled context or a streamer that keeps refusing the session stops the run.
// The report is returned in every case.
func (d *Driver) Run(ctx context.Context, entries []mal.Entry) (*report.Report, error) {
	rep := report.New(d.dryRun)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return rep.Finish(err), err
		}

		rep.Entries++
		query := matcher.QueryTitle(entry.Title, entry.EnglishTitle)

		resolved, err := d.process(ctx, entry, query, rep)
		switch {
		case errors.Is(err, crunchyroll.ErrUnauthorized):
			return rep.Finish(err), err
		case err != nil && ctx.Err() != nil:
			return rep.Finish(ctx.Err()), ctx.Err()
		case err != nil:
			rep.EntryErrors++
			log.WithFields(map[string]any{"entry": entry.ID, "query": query}).Errorf("Skipping entry: %v", err)
		case resolved:
			rep.Resolved++
		default:
			rep.Unresolved = append(rep.Unresolved, query)
			fmt.Fprintln(d.out, query)
		}
	}

	return rep.Finish(nil), nil
}

// process resolves one entry and marks its progress. resolved is false when no
// season could be attributed to it.
func (d *Driver) process(ctx context.Context, entry mal.Entry, query string, rep *report.Report) (resolved bool, err error) {
	log.Infof("Querying %s", query)

	series, found, err := d.first(ctx, query)
	if err != nil || !found {
		return false, err
	}

	log.Debugf("Result %q for %q", series.Title, query)
	if !matcher.SameTitle(series.Title, query) {
		return false, nil
	}

	seasons, err := d.streamer.Seasons(ctx, series)
	if err != nil {
		return false, err
	}

	for _, season := range seasons {
		if d.treated.Has(season.ID) {
			continue
		}

		episodes := d.lazyEpisodes(season)
		airDates := func(ctx context.Context) ([]time.Time, error) {
			list, err := episodes(ctx)
			return lo.Map(list, func(e crunchyroll.Episode, _ int) time.Time {
				return e.AirDate
			}), err
		}

		verdict, err := matcher.CheckSeason(ctx, query, season.Title, entry.StartDate, airDates)
		if err != nil {
			return false, err
		}

		switch verdict {
		case matcher.Reject:
			continue
		case matcher.Abandon:
			log.Debugf("Season %q airs after %q, giving up on %q", season.Title, query, series.Title)
			return false, nil
		}

		log.Infof("Found %s", season.Title)
		if err := d.markSeason(ctx, entry, season, episodes, rep); err != nil {
			return false, err
		}

		return true, nil
	}

	return false, nil
}

// first returns the most relevant series for query. Later results are never requested.
func (d *Driver) first(ctx context.Context, query string) (series crunchyroll.Series, found bool, err error) {
	for s, searchErr := range d.streamer.Search(ctx, query) {
		return s, searchErr == nil, searchErr
	}
	return crunchyroll.Series{}, false, nil
}

func (d *Driver) lazyEpisodes(season crunchyroll.Season) func(context.Context) ([]crunchyroll.Episode, error) {
	var (
		loaded   bool
		episodes []crunchyroll.Episode
	)

	return func(ctx context.Context) ([]crunchyroll.Episode, error) {
		if loaded {
			return episodes, nil
		}

		list, err := d.streamer.Episodes(ctx, season)
		if err != nil {
			return nil, err
		}

		loaded, episodes = true, list
		return episodes, nil
	}
}

// markSeason marks the whole season when the entry is complete for it, and the
// episodes numbered 1 to watched otherwise. Unnumbered episodes are always marked.
func (d *Driver) markSeason(
	ctx context.Context,
	entry mal.Entry,
	season crunchyroll.Season,
	episodes func(context.Context) ([]crunchyroll.Episode, error),
	rep *report.Report,
) error {
	if entry.Watched == season.NumberOfEpisodes {
		ok, err := d.mark(ctx, season.ID)
		if err != nil {
			return err
		}
		if ok {
			rep.SeasonsMarked++
		} else {
			rep.MarkFailures++
		}
		d.treated.Add(season.ID)
		return nil
	}

	list, err := episodes(ctx)
	if err != nil {
		return err
	}

	for _, episode := range list {
		if number, defined := episode.Number.Get(); defined {
			if number > entry.Watched {
				continue
			}
			if number < 1 {
				log.Warnf("Found an episode %d for %s, not marking %q", number, season.Title, episode.Title)
				continue
			}
		}

		ok, err := d.mark(ctx, episode.ID)
		if err != nil {
			return err
		}
		if ok {
			rep.EpisodesMarked++
		} else {
			rep.MarkFailures++
		}
	}

	d.treated.Add(season.ID)
	return nil
}

// mark sends one mark call. A refused session is returned; any other failure is
// logged and reported as ok=false.
func (d *Driver) mark(ctx context.Context, contentID string) (ok bool, err error) {
	if d.dryRun {
		log.Infof("Would mark %s", contentID)
		return true, nil
	}

	err = d.streamer.Mark(ctx, contentID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, crunchyroll.ErrUnauthorized):
		return false, err
	default:
		log.Errorf("Could not mark %s: %v", contentID, err)
		return false, nil
	}
}
