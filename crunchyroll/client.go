package crunchyroll

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"

	"github.com/malcr/malcr/log"
	"github.com/samber/lo"
	"golang.org/x/text/language"
)

// SearchPageSize is how many series one search request asks for.
const SearchPageSize = 25

// Client is the catalog and progress side of the API. It owns the bearer token
// and swaps it for a fresh one from its TokenSource on a 401.
type Client struct {
	http           *http.Client
	tokens         TokenSource
	account        string
	preferredAudio language.Tag
	locale         language.Tag
	bearer         string

	// Endpoint is the site root, without trailing slash.
	Endpoint string
}

// New returns a client marking progress on account.
func New(httpClient *http.Client, tokens TokenSource, account string, preferredAudio, locale language.Tag) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		http:           httpClient,
		tokens:         tokens,
		account:        account,
		preferredAudio: preferredAudio,
		locale:         locale,
		Endpoint:       baseURL,
	}
}

// Search returns the series matching query in relevance order. Pages are
// requested only as the sequence is consumed. An error is yielded once and
// ends the sequence.
func (c *Client) Search(ctx context.Context, query string) iter.Seq2[Series, error] {
	return func(yield func(Series, error) bool) {
		for start := 0; ; start += SearchPageSize {
			params := url.Values{}
			params.Set("q", query)
			params.Set("n", strconv.Itoa(SearchPageSize))
			params.Set("start", strconv.Itoa(start))
			params.Set("type", "series")
			params.Set("preferred_audio_language", c.preferredAudio.String())
			params.Set("locale", c.locale.String())

			var resp listResponse[searchBucket]
			if err := c.doRequest(ctx, http.MethodGet, "/content/v2/discover/search?"+params.Encode(), &resp); err != nil {
				yield(Series{}, fmt.Errorf("search %q: %w", query, err))
				return
			}

			bucket, ok := lo.Find(resp.Data, func(b searchBucket) bool {
				return b.Type == "series"
			})
			if !ok {
				return
			}

			for _, series := range bucket.Items {
				if !yield(series, nil) {
					return
				}
			}

			if len(bucket.Items) < SearchPageSize || start+len(bucket.Items) >= bucket.Count {
				return
			}
		}
	}
}

// Seasons lists the seasons of a series in catalog order.
func (c *Client) Seasons(ctx context.Context, series Series) ([]Season, error) {
	params := url.Values{}
	params.Set("preferred_audio_language", c.preferredAudio.String())
	params.Set("locale", c.locale.String())

	var resp listResponse[Season]
	path := fmt.Sprintf("/content/v2/cms/series/%s/seasons?%s", url.PathEscape(series.ID), params.Encode())
	if err := c.doRequest(ctx, http.MethodGet, path, &resp); err != nil {
		return nil, fmt.Errorf("seasons of %q: %w", series.Title, err)
	}

	return resp.Data, nil
}

// Episodes lists the episodes of a season in catalog order.
func (c *Client) Episodes(ctx context.Context, season Season) ([]Episode, error) {
	params := url.Values{}
	params.Set("preferred_audio_language", c.preferredAudio.String())
	params.Set("locale", c.locale.String())

	var resp listResponse[rawEpisode]
	path := fmt.Sprintf("/content/v2/cms/seasons/%s/episodes?%s", url.PathEscape(season.ID), params.Encode())
	if err := c.doRequest(ctx, http.MethodGet, path, &resp); err != nil {
		return nil, fmt.Errorf("episodes of %q: %w", season.Title, err)
	}

	return lo.Map(resp.Data, func(r rawEpisode, _ int) Episode {
		return r.episode()
	}), nil
}

// Mark records contentID, a season or an episode, as watched.
// Marking twice is harmless.
func (c *Client) Mark(ctx context.Context, contentID string) error {
	params := url.Values{}
	params.Set("preferred_audio_language", c.preferredAudio.String())
	params.Set("locale", c.locale.String())

	path := fmt.Sprintf("/content/v2/discover/%s/mark_as_watched/%s?%s",
		url.PathEscape(c.account), url.PathEscape(contentID), params.Encode())

	if err := c.doRequest(ctx, http.MethodPost, path, nil); err != nil {
		return fmt.Errorf("mark %s: %w", contentID, err)
	}

	return nil
}

// doRequest sends an authenticated request and decodes a JSON answer into result
// when it is not nil. A 401 triggers exactly one refresh and one retry.
func (c *Client) doRequest(ctx context.Context, method, path string, result any) error {
	if c.bearer == "" {
		bearer, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return err
		}
		c.bearer = bearer
	}

	resp, err := c.send(ctx, method, path)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		log.Debugf("%s %s: 401, refreshing the token", method, path)

		bearer, err := c.tokens.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("refresh: %w", err)
		}
		c.bearer = bearer

		if resp, err = c.send(ctx, method, path); err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			return ErrUnauthorized
		}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

func (c *Client) send(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.Endpoint+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}
