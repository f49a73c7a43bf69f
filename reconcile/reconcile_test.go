package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"testing"
	"time"

	"github.com/malcr/malcr/crunchyroll"
	"github.com/malcr/malcr/mal"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeStreamer struct {
	catalog   map[string][]crunchyroll.Series
	seasons   map[string][]crunchyroll.Season
	episodes  map[string][]crunchyroll.Episode
	searchErr map[string]error
	markErr   map[string]error

	searches     []string
	episodeLoads map[string]int
	marks        []string
}

func newFakeStreamer() *fakeStreamer {
	return &fakeStreamer{
		catalog:      map[string][]crunchyroll.Series{},
		seasons:      map[string][]crunchyroll.Season{},
		episodes:     map[string][]crunchyroll.Episode{},
		searchErr:    map[string]error{},
		markErr:      map[string]error{},
		episodeLoads: map[string]int{},
	}
}

func (f *fakeStreamer) Search(_ context.Context, query string) iter.Seq2[crunchyroll.Series, error] {
	return func(yield func(crunchyroll.Series, error) bool) {
		f.searches = append(f.searches, query)
		if err := f.searchErr[query]; err != nil {
			yield(crunchyroll.Series{}, err)
			return
		}
		for _, s := range f.catalog[query] {
			if !yield(s, nil) {
				return
			}
		}
	}
}

func (f *fakeStreamer) Seasons(_ context.Context, series crunchyroll.Series) ([]crunchyroll.Season, error) {
	return f.seasons[series.ID], nil
}

func (f *fakeStreamer) Episodes(_ context.Context, season crunchyroll.Season) ([]crunchyroll.Episode, error) {
	f.episodeLoads[season.ID]++
	return f.episodes[season.ID], nil
}

func (f *fakeStreamer) Mark(_ context.Context, contentID string) error {
	if err := f.markErr[contentID]; err != nil {
		return err
	}
	f.marks = append(f.marks, contentID)
	return nil
}

// addSeason registers a season of n weekly episodes, numbered from 1, starting at first.
func (f *fakeStreamer) addSeason(seriesID, id, title string, first time.Time, n int) {
	f.seasons[seriesID] = append(f.seasons[seriesID], crunchyroll.Season{ID: id, Title: title, NumberOfEpisodes: n})
	for i := 1; i <= n; i++ {
		f.episodes[id] = append(f.episodes[id], crunchyroll.Episode{
			ID:      fmt.Sprintf("%s-E%d", id, i),
			Number:  mo.Some(i),
			AirDate: first.AddDate(0, 0, 7*(i-1)),
		})
	}
}

type fakeTracker struct {
	entries []mal.Entry
	err     error
}

func (f fakeTracker) FetchList(context.Context) ([]mal.Entry, error) {
	return f.entries, f.err
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(id int, title string, watched int, start time.Time) mal.Entry {
	return mal.Entry{ID: id, Title: title, Watched: watched, StartDate: mo.Some(start), Status: "completed"}
}

func TestRun(t *testing.T) {
	Convey("Given a streamer and a driver", t, func() {
		ctx := context.Background()
		streamer := newFakeStreamer()
		var out bytes.Buffer
		driver := New(streamer, &out, false)

		Convey("A complete entry should mark its season once", func() {
			streamer.catalog["hitoribocchi no marumaru seikatsu"] = []crunchyroll.Series{{ID: "S", Title: "Hitoribocchi no Marumaruseikatsu"}}
			streamer.addSeason("S", "GR1", "Hitoribocchi no Marumaruseikatsu", day(2019, 4, 5), 12)

			rep, err := driver.Run(ctx, []mal.Entry{entry(1, "Hitoribocchi no Marumaru Seikatsu", 12, day(2019, 4, 5))})

			So(err, ShouldBeNil)
			So(streamer.marks, ShouldResemble, []string{"GR1"})
			So(rep.SeasonsMarked, ShouldEqual, 1)
			So(rep.Resolved, ShouldEqual, 1)
			So(out.String(), ShouldBeEmpty)
			So(driver.Treated().Has("GR1"), ShouldBeTrue)
		})

		Convey("A partial entry should mark episodes 1 to watched", func() {
			streamer.catalog["frieren"] = []crunchyroll.Series{{ID: "S", Title: "Frieren"}}
			streamer.addSeason("S", "GY1", "Frieren", day(2023, 9, 29), 12)

			rep, err := driver.Run(ctx, []mal.Entry{entry(1, "Frieren", 3, day(2023, 9, 29))})

			So(err, ShouldBeNil)
			So(streamer.marks, ShouldResemble, []string{"GY1-E1", "GY1-E2", "GY1-E3"})
			So(rep.EpisodesMarked, ShouldEqual, 3)
			So(rep.SeasonsMarked, ShouldEqual, 0)
			So(streamer.episodeLoads["GY1"], ShouldEqual, 1)
		})

		Convey("Unnumbered episodes should be marked and episode 0 skipped", func() {
			streamer.catalog["frieren"] = []crunchyroll.Series{{ID: "S", Title: "Frieren"}}
			streamer.addSeason("S", "GY1", "Frieren", day(2023, 9, 29), 5)
			streamer.episodes["GY1"] = append([]crunchyroll.Episode{
				{ID: "preview", Number: mo.None[int](), AirDate: day(2023, 9, 1)},
				{ID: "zero", Number: mo.Some(0), AirDate: day(2023, 9, 15)},
			}, streamer.episodes["GY1"]...)

			_, err := driver.Run(ctx, []mal.Entry{entry(1, "Frieren", 3, day(2023, 9, 29))})

			So(err, ShouldBeNil)
			So(streamer.marks, ShouldResemble, []string{"preview", "GY1-E1", "GY1-E2", "GY1-E3"})
		})

		Convey("Two entries of one series should each claim their own season", func() {
			streamer.catalog["s"] = []crunchyroll.Series{{ID: "S", Title: "S"}}
			streamer.catalog["s 2nd season"] = []crunchyroll.Series{{ID: "S", Title: "S"}}
			streamer.addSeason("S", "A", "S", day(2020, 1, 3), 12)
			streamer.addSeason("S", "B", "S Part Two", day(2021, 1, 8), 12)

			rep, err := driver.Run(ctx, []mal.Entry{
				entry(1, "S", 12, day(2020, 1, 1)),
				entry(2, "S 2nd Season", 12, day(2021, 1, 1)),
			})

			So(err, ShouldBeNil)
			So(streamer.marks, ShouldResemble, []string{"A", "B"})
			So(rep.SeasonsMarked, ShouldEqual, 2)
			So(streamer.episodeLoads["A"], ShouldEqual, 0)

			Convey("And a third entry matching A again should not mark it twice", func() {
				_, err := driver.Run(ctx, []mal.Entry{entry(3, "S", 12, day(2020, 1, 1))})
				So(err, ShouldBeNil)
				So(streamer.marks, ShouldResemble, []string{"A", "B"})
				So(out.String(), ShouldEqual, "s\n")
			})
		})

		Convey("A later season should abandon the series", func() {
			streamer.catalog["show"] = []crunchyroll.Series{{ID: "S", Title: "Show"}}
			streamer.addSeason("S", "OLD", "Show Zero", day(2015, 1, 1), 4)
			streamer.addSeason("S", "NEW", "Show Again", day(2022, 1, 1), 4)
			streamer.addSeason("S", "MID", "Show Middle", day(2020, 1, 1), 4)

			rep, err := driver.Run(ctx, []mal.Entry{entry(1, "Show", 4, day(2020, 1, 1))})

			So(err, ShouldBeNil)
			So(streamer.marks, ShouldBeEmpty)
			So(streamer.episodeLoads["MID"], ShouldEqual, 0)
			So(rep.Unresolved, ShouldResemble, []string{"show"})
			So(out.String(), ShouldEqual, "show\n")
		})

		Convey("An entry without a start date should only match by title", func() {
			streamer.catalog["show"] = []crunchyroll.Series{{ID: "S", Title: "Show"}}
			streamer.addSeason("S", "X", "Show Season 1", day(2020, 1, 1), 4)

			_, err := driver.Run(ctx, []mal.Entry{{ID: 1, Title: "Show", Watched: 4}})

			So(err, ShouldBeNil)
			So(streamer.marks, ShouldBeEmpty)
			So(streamer.episodeLoads["X"], ShouldEqual, 0)
			So(out.String(), ShouldEqual, "show\n")
		})

		Convey("Titles should be reported on stdout when nothing matches", func() {
			streamer.catalog["foo"] = []crunchyroll.Series{{ID: "S", Title: "Foobar"}}

			rep, err := driver.Run(ctx, []mal.Entry{
				entry(1, "Foo", 1, day(2020, 1, 1)),
				{ID: 2, Title: "Nowhere", EnglishTitle: mo.Some("Nowhere To Be Found"), Watched: 1},
			})

			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "foo\nnowhere to be found\n")
			So(rep.Unresolved, ShouldHaveLength, 2)
			So(streamer.searches, ShouldResemble, []string{"foo", "nowhere to be found"})
		})

		Convey("A failed search should skip the entry silently on stdout", func() {
			streamer.searchErr["broken"] = errors.New("connection reset")
			streamer.catalog["frieren"] = []crunchyroll.Series{{ID: "S", Title: "Frieren"}}
			streamer.addSeason("S", "GY1", "Frieren", day(2023, 9, 29), 2)

			rep, err := driver.Run(ctx, []mal.Entry{
				entry(1, "Broken", 1, day(2020, 1, 1)),
				entry(2, "Frieren", 2, day(2023, 9, 29)),
			})

			So(err, ShouldBeNil)
			So(rep.EntryErrors, ShouldEqual, 1)
			So(out.String(), ShouldBeEmpty)
			So(streamer.marks, ShouldResemble, []string{"GY1"})
		})

		Convey("A failed mark should be counted and the run should go on", func() {
			streamer.catalog["frieren"] = []crunchyroll.Series{{ID: "S", Title: "Frieren"}}
			streamer.addSeason("S", "GY1", "Frieren", day(2023, 9, 29), 3)
			streamer.markErr["GY1-E2"] = &crunchyroll.StatusError{Code: 500}

			rep, err := driver.Run(ctx, []mal.Entry{entry(1, "Frieren", 2, day(2023, 9, 29))})

			So(err, ShouldBeNil)
			So(streamer.marks, ShouldResemble, []string{"GY1-E1"})
			So(rep.MarkFailures, ShouldEqual, 1)
			So(rep.Resolved, ShouldEqual, 1)
			So(driver.Treated().Has("GY1"), ShouldBeTrue)
		})

		Convey("A refused session should stop the run", func() {
			streamer.catalog["frieren"] = []crunchyroll.Series{{ID: "S", Title: "Frieren"}}
			streamer.addSeason("S", "GY1", "Frieren", day(2023, 9, 29), 2)
			streamer.markErr["GY1"] = fmt.Errorf("mark GY1: %w", crunchyroll.ErrUnauthorized)

			rep, err := driver.Run(ctx, []mal.Entry{
				entry(1, "Frieren", 2, day(2023, 9, 29)),
				entry(2, "Later", 1, day(2024, 1, 1)),
			})

			So(errors.Is(err, crunchyroll.ErrUnauthorized), ShouldBeTrue)
			So(rep.Entries, ShouldEqual, 1)
			So(rep.Aborted, ShouldNotBeEmpty)
			So(streamer.searches, ShouldResemble, []string{"frieren"})
		})

		Convey("A cancelled context should stop before the next entry", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			rep, err := driver.Run(cancelled, []mal.Entry{entry(1, "Frieren", 2, day(2023, 9, 29))})

			So(err, ShouldEqual, context.Canceled)
			So(rep.Entries, ShouldEqual, 0)
			So(streamer.searches, ShouldBeEmpty)
		})
	})

	Convey("Given a dry run", t, func() {
		streamer := newFakeStreamer()
		streamer.catalog["frieren"] = []crunchyroll.Series{{ID: "S", Title: "Frieren"}}
		streamer.addSeason("S", "GY1", "Frieren", day(2023, 9, 29), 3)
		var out bytes.Buffer
		driver := New(streamer, &out, true)

		rep, err := driver.Run(context.Background(), []mal.Entry{entry(1, "Frieren", 2, day(2023, 9, 29))})

		Convey("Nothing should be sent but everything counted", func() {
			So(err, ShouldBeNil)
			So(streamer.marks, ShouldBeEmpty)
			So(rep.EpisodesMarked, ShouldEqual, 2)
			So(rep.DryRun, ShouldBeTrue)
			So(driver.Treated().Has("GY1"), ShouldBeTrue)
		})
	})
}

func TestSync(t *testing.T) {
	Convey("Sync", t, func() {
		streamer := newFakeStreamer()
		var out bytes.Buffer
		driver := New(streamer, &out, false)

		Convey("Should process the tracker's list in order", func() {
			rep, err := driver.Sync(context.Background(), fakeTracker{entries: []mal.Entry{
				entry(1, "Old", 1, day(2001, 1, 1)),
				entry(2, "New", 1, day(2020, 1, 1)),
			}})

			So(err, ShouldBeNil)
			So(rep.Entries, ShouldEqual, 2)
			So(streamer.searches, ShouldResemble, []string{"old", "new"})
		})

		Convey("Should fail when the list cannot be read", func() {
			_, err := driver.Sync(context.Background(), fakeTracker{err: context.Canceled})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
