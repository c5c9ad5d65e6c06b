// Package spotify is the outbound client for the external music metadata
// service: a lazily cached client-credentials token plus track search and
// single-track lookup. Failures are surfaced to the caller, never retried
// here; retry is a UI concern.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"songnote/domain"
	"songnote/errors"
)

// DefaultBaseURL is the root of the music service Web API.
const DefaultBaseURL = "https://api.spotify.com"

// searchLimit bounds track search results, mirroring the UI page size.
const searchLimit = 10

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     Tokener
	log        *slog.Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(tokens Tokener, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		tokens:     tokens,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type trackPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

type searchResponse struct {
	Tracks *struct {
		Items []trackPayload `json:"items"`
	} `json:"tracks"`
}

// SearchTracks queries the service for tracks matching the given text,
// bounded to 10 items. The query must be non-empty.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]domain.Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", errors.ErrTrackSearch)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(searchLimit))
	endpoint := c.baseURL + "/v1/search?" + params.Encode()

	raw, err := c.getJSON(ctx, endpoint, errors.ErrTrackSearch)
	if err != nil {
		return nil, err
	}

	var payload searchResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", errors.ErrTrackSearch, err)
	}
	if payload.Tracks == nil {
		return nil, fmt.Errorf("%w: no tracks in response", errors.ErrTrackSearch)
	}

	items := payload.Tracks.Items
	if len(items) > searchLimit {
		items = items[:searchLimit]
	}
	c.log.Debug("Track search completed", "query", query, "results", len(items))
	return lo.Map(items, func(p trackPayload, _ int) domain.Track {
		return toTrack(p)
	}), nil
}

// GetTrack fetches a single track by id.
func (c *Client) GetTrack(ctx context.Context, trackID string) (domain.Track, error) {
	if strings.TrimSpace(trackID) == "" {
		return domain.Track{}, fmt.Errorf("%w: empty track id", errors.ErrTrackFetch)
	}

	endpoint := c.baseURL + "/v1/tracks/" + url.PathEscape(trackID)
	raw, err := c.getJSON(ctx, endpoint, errors.ErrTrackFetch)
	if err != nil {
		return domain.Track{}, err
	}

	var payload trackPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Track{}, fmt.Errorf("%w: decode response: %v", errors.ErrTrackFetch, err)
	}
	if payload.ID == "" || payload.Name == "" {
		return domain.Track{}, fmt.Errorf("%w: malformed track payload", errors.ErrTrackFetch)
	}
	return toTrack(payload), nil
}

// getJSON performs a bearer-authenticated GET and returns the raw body.
// Non-2xx responses are wrapped with kind, body capped at 4KiB for context.
func (c *Client) getJSON(ctx context.Context, endpoint string, kind error) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", kind, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kind, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("%w: unexpected status %d from %s: %s", kind, res.StatusCode, endpoint, string(buf))
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", kind, err)
	}
	return buf, nil
}

func toTrack(p trackPayload) domain.Track {
	track := domain.Track{
		ID:   p.ID,
		Name: p.Name,
	}
	for _, a := range p.Artists {
		track.Artists = append(track.Artists, domain.Artist{Name: a.Name})
	}
	for _, img := range p.Album.Images {
		track.Album.Images = append(track.Album.Images, domain.AlbumImage{URL: img.URL})
	}
	return track
}
