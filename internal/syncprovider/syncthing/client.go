package syncthing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mediasort/internal/logging"
)

// folderConfig is the subset of Syncthing's folder configuration we use
// to map filesystem paths onto folder IDs.
type folderConfig struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// needItem is one entry of the /rest/db/need listing.
type needItem struct {
	Name string `json:"name"`
}

type needResponse struct {
	Progress []needItem `json:"progress"`
	Queued   []needItem `json:"queued"`
	Rest     []needItem `json:"rest"`
}

// Client queries a Syncthing instance's REST API for transfer status.
// Every failure degrades to "unavailable" so callers fall back to local
// evidence instead of blocking on a flaky service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	// local-to-remote path translations when Syncthing runs elsewhere
	// and sees the library under different mount points.
	mappings []pathMapping

	mu      sync.Mutex
	folders []folderConfig
}

// pathMapping is one parsed "remote:local" prefix pair.
type pathMapping struct {
	remote string
	local  string
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

// New creates a Syncthing client. pathMappings holds "remote:local"
// prefix pairs, or is empty when both sides see the same paths.
func New(baseURL, apiKey string, pathMappings []string, timeout time.Duration, logger *slog.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("syncthing url required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("syncthing api key required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	for _, mapping := range pathMappings {
		mapping = strings.TrimSpace(mapping)
		if mapping == "" {
			continue
		}
		remote, local, ok := strings.Cut(mapping, ":")
		if !ok {
			return nil, fmt.Errorf("path mapping %q must be remote:local", mapping)
		}
		client.mappings = append(client.mappings, pathMapping{
			remote: strings.TrimRight(remote, "/"),
			local:  strings.TrimRight(local, "/"),
		})
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ItemSyncing reports whether path still has pending transfer work in
// Syncthing. ok is false when the service could not answer or the path
// falls outside every synced folder.
func (c *Client) ItemSyncing(ctx context.Context, path string) (syncing bool, ok bool) {
	remotePath := c.toRemote(path)
	folder, rel, found := c.resolveFolder(ctx, remotePath)
	if !found {
		return false, false
	}

	need, err := c.need(ctx, folder.ID)
	if err != nil {
		c.logger.Warn("syncthing need query failed",
			logging.String("folder", folder.ID),
			logging.Error(err))
		return false, false
	}

	for _, group := range [][]needItem{need.Progress, need.Queued, need.Rest} {
		for _, item := range group {
			if item.Name == rel || strings.HasPrefix(item.Name, rel+"/") {
				return true, true
			}
		}
	}
	return false, true
}

// toRemote translates a local path into the path Syncthing sees. The
// first mapping whose local prefix contains the path wins.
func (c *Client) toRemote(path string) string {
	for _, m := range c.mappings {
		if path == m.local {
			return m.remote
		}
		if strings.HasPrefix(path, m.local+"/") {
			return m.remote + strings.TrimPrefix(path, m.local)
		}
	}
	return path
}

// resolveFolder finds the synced folder containing remotePath and the
// path relative to its root, in Syncthing's slash-separated form.
func (c *Client) resolveFolder(ctx context.Context, remotePath string) (folderConfig, string, bool) {
	folders, err := c.folderConfigs(ctx)
	if err != nil {
		c.logger.Warn("syncthing folder config query failed", logging.Error(err))
		return folderConfig{}, "", false
	}
	for _, folder := range folders {
		root := strings.TrimRight(folder.Path, "/")
		if remotePath == root {
			return folder, "", true
		}
		if strings.HasPrefix(remotePath, root+"/") {
			rel := strings.TrimPrefix(remotePath, root+"/")
			return folder, filepath.ToSlash(rel), true
		}
	}
	return folderConfig{}, "", false
}

// folderConfigs fetches and caches the folder list. The configuration
// rarely changes within a single run.
func (c *Client) folderConfigs(ctx context.Context) ([]folderConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.folders != nil {
		return c.folders, nil
	}

	var folders []folderConfig
	if err := c.get(ctx, "/rest/config/folders", nil, &folders); err != nil {
		return nil, err
	}
	c.folders = folders
	return folders, nil
}

func (c *Client) need(ctx context.Context, folderID string) (*needResponse, error) {
	params := url.Values{}
	params.Set("folder", folderID)

	var need needResponse
	if err := c.get(ctx, "/rest/db/need", params, &need); err != nil {
		return nil, err
	}
	return &need, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("syncthing returned %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode syncthing response: %w", err)
	}
	return nil
}
