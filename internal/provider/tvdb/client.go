package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SeriesStatus is the lifecycle state TheTVDB reports for a series.
type SeriesStatus string

const (
	// StatusCurrent covers series still airing or between seasons.
	StatusCurrent SeriesStatus = "current"
	// StatusConcluded covers series that have ended or been cancelled.
	StatusConcluded SeriesStatus = "concluded"
)

// SeriesInfo is the resolved status for a show lookup.
type SeriesInfo struct {
	ID     int64
	Name   string
	Status SeriesStatus
}

// searchResult models one entry of the TVDB v4 search response.
type searchResult struct {
	TVDBID string `json:"tvdb_id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// seriesExtended models the subset of /series/{id}/extended we consume.
type seriesExtended struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status struct {
		Name string `json:"name"`
	} `json:"status"`
}

type apiEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Client talks to TheTVDB v4 API. Login tokens are fetched lazily and
// reused until the API rejects them.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TVDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tvdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tvdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// LookupSeries searches for name and resolves the best match's status.
// The first series-typed search result wins; TVDB orders results by
// relevance so this mirrors picking the top hit.
func (c *Client) LookupSeries(ctx context.Context, name string) (*SeriesInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("series name must not be empty")
	}

	results, err := c.search(ctx, name)
	if err != nil {
		return nil, err
	}
	var picked *searchResult
	for i := range results {
		if results[i].Type == "series" {
			picked = &results[i]
			break
		}
	}
	if picked == nil {
		return nil, fmt.Errorf("no series found for %q", name)
	}
	id, err := strconv.ParseInt(picked.TVDBID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse tvdb id %q: %w", picked.TVDBID, err)
	}

	extended, err := c.seriesExtended(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SeriesInfo{
		ID:     extended.ID,
		Name:   extended.Name,
		Status: mapStatus(extended.Status.Name),
	}, nil
}

// mapStatus folds TVDB status names into the two states the organizer
// cares about. Unknown names default to current so active shows are
// never filed away early.
func mapStatus(name string) SeriesStatus {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ended", "cancelled", "canceled":
		return StatusConcluded
	case "continuing", "ongoing", "upcoming":
		return StatusCurrent
	default:
		return StatusCurrent
	}
}

func (c *Client) search(ctx context.Context, query string) ([]searchResult, error) {
	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse tvdb url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "series")
	endpoint.RawQuery = params.Encode()

	raw, err := c.get(ctx, endpoint.String())
	if err != nil {
		return nil, err
	}
	var results []searchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return results, nil
}

func (c *Client) seriesExtended(ctx context.Context, id int64) (*seriesExtended, error) {
	raw, err := c.get(ctx, fmt.Sprintf("%s/series/%d/extended", c.baseURL, id))
	if err != nil {
		return nil, err
	}
	var payload seriesExtended
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode series details: %w", err)
	}
	return &payload, nil
}

// get performs an authenticated GET, logging in first when no token is
// held and retrying once on 401 with a fresh token.
func (c *Client) get(ctx context.Context, rawURL string) (json.RawMessage, error) {
	token, err := c.ensureToken(ctx, false)
	if err != nil {
		return nil, err
	}

	raw, status, err := c.do(ctx, rawURL, token)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		token, err = c.ensureToken(ctx, true)
		if err != nil {
			return nil, err
		}
		raw, status, err = c.do(ctx, rawURL, token)
		if err != nil {
			return nil, err
		}
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("tvdb request returned %d", status)
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, rawURL, token string) (json.RawMessage, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}
	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode tvdb response: %w", err)
	}
	return envelope.Data, resp.StatusCode, nil
}

// ensureToken returns the cached bearer token, performing a login when
// none is held or force is set.
func (c *Client) ensureToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && !force {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{"apikey": c.apiKey})
	if err != nil {
		return "", fmt.Errorf("encode login body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tvdb login returned %d", resp.StatusCode)
	}
	var payload struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if payload.Data.Token == "" {
		return "", errors.New("tvdb login returned empty token")
	}
	c.token = payload.Data.Token
	return c.token, nil
}
