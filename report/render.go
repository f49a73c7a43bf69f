package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/malcr/malcr/util"
)

// Render draws the counters as a two-column table. Plain ASCII unless styled.
func (r *Report) Render(styled bool) string {
	tw := table.NewWriter()
	if styled {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	title := "Sync"
	if r.DryRun {
		title = "Sync (dry run)"
	}
	tw.SetTitle(title)

	tw.AppendRows([]table.Row{
		{"Started", r.StartedAt.Format(time.DateTime)},
		{"Duration", r.Duration().Round(time.Second).String()},
		{"Entries", strconv.Itoa(r.Entries)},
		{"Resolved", strconv.Itoa(r.Resolved)},
		{"Unresolved", strconv.Itoa(len(r.Unresolved))},
		{"Seasons marked", strconv.Itoa(r.SeasonsMarked)},
		{"Episodes marked", strconv.Itoa(r.EpisodesMarked)},
		{"Mark failures", strconv.Itoa(r.MarkFailures)},
		{"Entry errors", strconv.Itoa(r.EntryErrors)},
	})
	if r.Aborted != "" {
		tw.AppendRow(table.Row{"Aborted", r.Aborted})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})

	return tw.Render()
}

// RenderUnresolved lists titles one per row, numbered.
func RenderUnresolved(titles []string, styled bool) string {
	tw := table.NewWriter()
	if styled {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	tw.AppendHeader(table.Row{"#", "Unresolved title"})
	for i, title := range titles {
		tw.AppendRow(table.Row{i + 1, title})
	}
	tw.AppendFooter(table.Row{"", util.Quantify(len(titles), "title", "titles")})

	return tw.Render()
}

// Headline is the one-line version of the counters.
func (r *Report) Headline() string {
	return fmt.Sprintf("%s resolved, %s unresolved, %s and %s marked",
		util.Quantify(r.Resolved, "entry", "entries"),
		strconv.Itoa(len(r.Unresolved)),
		util.Quantify(r.SeasonsMarked, "season", "seasons"),
		util.Quantify(r.EpisodesMarked, "episode", "episodes"),
	)
}
