// Package mal reads a user's anime list from the MyAnimeList REST API.
package mal

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// AlternativeTitles are the localized titles MyAnimeList knows for an anime.
type AlternativeTitles struct {
	Synonyms []string `json:"synonyms"`
	En       string   `json:"en"`
	Ja       string   `json:"ja"`
}

// Node is the anime part of a list entry.
type Node struct {
	ID                int                `json:"id"`
	Title             string             `json:"title"`
	AlternativeTitles *AlternativeTitles `json:"alternative_titles"`
	StartDate         string             `json:"start_date"`
}

// ListStatus is the user's own record for an anime.
type ListStatus struct {
	Status             string `json:"status"`
	Score              int    `json:"score"`
	NumEpisodesWatched int    `json:"num_episodes_watched"`
	IsRewatching       bool   `json:"is_rewatching"`
	UpdatedAt          string `json:"updated_at"`
}

// UserListEntry represents an anime in the user's list.
type UserListEntry struct {
	Node       Node        `json:"node"`
	ListStatus *ListStatus `json:"list_status"`
}

// UserList is one page of the user's list.
type UserList struct {
	Data   []UserListEntry `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// Entry is a watched title as the rest of malcr sees it. Entries are only built
// from list records that have a status and at least one watched episode.
type Entry struct {
	ID           int
	Title        string
	EnglishTitle mo.Option[string]
	StartDate    mo.Option[time.Time]
	Watched      int
	Status       string
}

// PreferredTitle is the English title when MyAnimeList has one, the canonical title otherwise.
func (e Entry) PreferredTitle() string {
	return e.EnglishTitle.OrElse(e.Title)
}

// toEntry converts a raw record. ok is false for records the sync must never see.
// A malformed start date is a broken API response and panics.
func toEntry(raw UserListEntry) (entry Entry, ok bool) {
	if raw.ListStatus == nil || raw.ListStatus.NumEpisodesWatched == 0 {
		return Entry{}, false
	}

	entry = Entry{
		ID:      raw.Node.ID,
		Title:   raw.Node.Title,
		Watched: raw.ListStatus.NumEpisodesWatched,
		Status:  raw.ListStatus.Status,
	}

	if alt := raw.Node.AlternativeTitles; alt != nil && strings.TrimSpace(alt.En) != "" {
		entry.EnglishTitle = mo.Some(alt.En)
	}

	if raw.Node.StartDate != "" {
		entry.StartDate = mo.Some(lo.Must(ParseDate(raw.Node.StartDate)))
	}

	return entry, true
}
