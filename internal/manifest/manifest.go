package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// LocalCacheFile is the on-disk fallback copy of the last fetched manifest
const LocalCacheFile = "patches_local.json"

// FetchTimeout bounds manifest and probe requests
const FetchTimeout = 10 * time.Second

var (
	// ErrEmptyManifest is returned when the server response is not a non-empty JSON object
	ErrEmptyManifest = errors.New("manifest contains no entries")

	// ErrNoLastModified is returned when the server does not expose a Last-Modified header
	ErrNoLastModified = errors.New("no Last-Modified header")
)

// Manifest maps a file key (e.g. "art") to the URL of its patch archive
type Manifest map[string]string

// Client fetches the patch manifest and probes remote archive timestamps
type Client struct {
	httpClient *http.Client
	cachePath  string
}

// NewClient creates a manifest client that caches fetched manifests at cachePath
func NewClient(cachePath string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: FetchTimeout},
		cachePath:  cachePath,
	}
}

// Fetch downloads the manifest from the given URL. A successfully fetched
// manifest is written to the local cache so a later run can fall back to it
// when the server is unreachable.
func (c *Client) Fetch(ctx context.Context, url string) (Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest URL %s: %w", url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("manifest request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest request to %s returned status %d", url, resp.StatusCode)
	}

	var m Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("manifest from %s is not valid JSON: %w", url, err)
	}

	if len(m) == 0 {
		return nil, ErrEmptyManifest
	}

	c.saveCache(m)
	return m, nil
}

// LoadCached loads the locally cached manifest, used when Fetch fails
func (c *Client) LoadCached() (Manifest, error) {
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return nil, fmt.Errorf("no cached manifest at %s: %w", c.cachePath, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cached manifest at %s is not valid JSON: %w", c.cachePath, err)
	}

	if len(m) == 0 {
		return nil, ErrEmptyManifest
	}

	return m, nil
}

// Probe issues a HEAD request for the archive URL and returns its
// Last-Modified timestamp. Servers without the header cannot be compared
// against the local version map, so that case is an error.
func (c *Client) Probe(ctx context.Context, url string) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid archive URL %s: %w", url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("probe of %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("probe of %s returned status %d", url, resp.StatusCode)
	}

	lastModified := resp.Header.Get("Last-Modified")
	if lastModified == "" {
		return time.Time{}, fmt.Errorf("probe of %s: %w", url, ErrNoLastModified)
	}

	stamp, err := http.ParseTime(lastModified)
	if err != nil {
		return time.Time{}, fmt.Errorf("probe of %s returned unparseable Last-Modified %q: %w", url, lastModified, err)
	}

	return stamp, nil
}

// saveCache writes the manifest to the local cache file. Failure to cache is
// not fatal for the current run.
func (c *Client) saveCache(m Manifest) {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		log.Printf("Failed to encode manifest cache: %v", err)
		return
	}

	if err := os.WriteFile(c.cachePath, data, 0644); err != nil {
		log.Printf("Failed to write manifest cache to %s: %v", c.cachePath, err)
	}
}
