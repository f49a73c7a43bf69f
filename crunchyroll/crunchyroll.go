// Package crunchyroll talks to the Crunchyroll web API: catalog search, season and
// episode listings, and the watch-progress call.
package crunchyroll

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/mo"
)

const (
	baseURL = "https://www.crunchyroll.com"

	// PublicClientID is the client id of the Crunchyroll web player.
	PublicClientID = "noaihdevm_6iyg0a8l0q"
)

// ErrUnauthorized is returned when the API still answers 401 after a token refresh,
// or when the login itself is refused.
var ErrUnauthorized = errors.New("crunchyroll: unauthorized")

// StatusError is a non-2xx answer that is not an authorization failure.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("crunchyroll: %s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Series is a search hit.
type Series struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Season of a series. Equality is by ID.
type Season struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	SeasonNumber     int    `json:"season_number"`
	NumberOfEpisodes int    `json:"number_of_episodes"`
	SeriesID         string `json:"series_id"`
}

// Episode of a season. Specials and previews may have no number.
type Episode struct {
	ID      string
	Title   string
	Number  mo.Option[int]
	AirDate time.Time
}

type rawEpisode struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	EpisodeNumber  *int      `json:"episode_number"`
	EpisodeAirDate time.Time `json:"episode_air_date"`
}

func (r rawEpisode) episode() Episode {
	return Episode{
		ID:      r.ID,
		Title:   r.Title,
		Number:  mo.PointerToOption(r.EpisodeNumber),
		AirDate: r.EpisodeAirDate,
	}
}

type listResponse[T any] struct {
	Total int `json:"total"`
	Data  []T `json:"data"`
}

type searchBucket struct {
	Type  string   `json:"type"`
	Count int      `json:"count"`
	Items []Series `json:"items"`
}
