package mal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/malcr/malcr/log"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

const (
	apiEndpoint = "https://api.myanimelist.net/v2"

	// PageSize is the largest page the list endpoint serves.
	PageSize = 1000

	// DefaultPageDelay is the pause between two page requests.
	DefaultPageDelay = 2 * time.Second

	listFields = "list_status,alternative_titles,start_date"
)

// ErrRateLimited is returned when MyAnimeList answers 429.
var ErrRateLimited = errors.New("mal: rate limited")

// Client reads public anime lists. It authenticates with a client id only,
// so the list must be public.
type Client struct {
	http     *http.Client
	clientID string
	username string

	// Endpoint is the API root, without trailing slash.
	Endpoint string
	// PageDelay is waited between page requests, never before the first one.
	PageDelay time.Duration
}

// New returns a client reading the list of username.
func New(httpClient *http.Client, clientID, username string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		http:      httpClient,
		clientID:  clientID,
		username:  username,
		Endpoint:  apiEndpoint,
		PageDelay: DefaultPageDelay,
	}
}

// FetchList returns every watched entry of the user's list, oldest start date first.
// Pagination ends on a short page or on the first failed request; what was read
// until then is returned. Only a cancelled context yields an error.
func (c *Client) FetchList(ctx context.Context) ([]Entry, error) {
	var entries []Entry

	for offset := 0; ; offset += PageSize {
		if offset > 0 {
			if err := sleep(ctx, c.PageDelay); err != nil {
				return nil, err
			}
		}

		page, err := c.page(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			log.Errorf("Error while retrieving the list at offset %d: %v", offset, err)
			break
		}

		entries = append(entries, lo.FilterMap(page.Data, func(raw UserListEntry, _ int) (Entry, bool) {
			return toEntry(raw)
		})...)

		if len(page.Data) != PageSize {
			break
		}
	}

	log.Infof("%d elements read", len(entries))
	slices.Reverse(entries)

	return entries, nil
}

func (c *Client) page(ctx context.Context, offset int) (*UserList, error) {
	query := url.Values{}
	query.Set("fields", listFields)
	query.Set("limit", strconv.Itoa(PageSize))
	query.Set("offset", strconv.Itoa(offset))
	query.Set("sort", "anime_start_date")
	query.Set("nsfw", "true")

	endpoint := fmt.Sprintf("%s/users/%s/animelist?%s", c.Endpoint, url.PathEscape(c.username), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-MAL-CLIENT-ID", c.clientID)
	req.Header.Set("Accept", "application/json")

	log.Debugf("GET %s", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mal list request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("mal list error %d: %s", resp.StatusCode, string(body))
	}

	var list UserList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("mal list decode: %w", err)
	}

	return &list, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
