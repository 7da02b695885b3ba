package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/grant/suneater/types"
)

const (
	DefaultAPIBase = "https://api.github.com"
	DefaultWebBase = "https://github.com"
	userAgent      = "suneater/1.0 (+https://github.com/grant/suneater)"
)

var (
	// ErrNotConfigured is returned when owner or repository is empty; no request is made.
	ErrNotConfigured = errors.New("repository not configured")
	// ErrNetworkFailure wraps transport errors, timeouts and cancellation.
	ErrNetworkFailure = errors.New("network failure")
	// ErrNonSuccessStatus is returned for any non-2xx response.
	ErrNonSuccessStatus = errors.New("non-success status")
	// ErrMalformedPayload is returned when the body has no traversable tree listing.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrEmptyResult is returned when no file entries survive filtering.
	ErrEmptyResult = errors.New("empty result")
)

// Options configures a Client.
type Options struct {
	Owner   string
	Repo    string
	APIBase string
	WebBase string
	Timeout time.Duration
	// Memoize keeps successful listings in memory until ClearCache.
	Memoize    bool
	HTTPClient *http.Client
}

// Client implements types.ItemSource against the git trees API.
type Client struct {
	client  *http.Client
	owner   string
	repo    string
	apiBase string
	webBase string
	memoize bool
	cache   map[string]cachedResult
	mu      sync.Mutex
}

type cachedResult struct {
	entries   []Entry
	timestamp time.Time
}

// Compile-time interface check
var _ types.ItemSource = (*Client)(nil)

// New creates a new Client. Zero-valued options fall back to the public
// GitHub endpoints and a 10 second timeout.
func New(opts Options) *Client {
	if opts.APIBase == "" {
		opts.APIBase = DefaultAPIBase
	}
	if opts.WebBase == "" {
		opts.WebBase = DefaultWebBase
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		client:  hc,
		owner:   strings.TrimSpace(opts.Owner),
		repo:    strings.TrimSpace(opts.Repo),
		apiBase: strings.TrimRight(opts.APIBase, "/"),
		webBase: strings.TrimRight(opts.WebBase, "/"),
		memoize: opts.Memoize,
		cache:   make(map[string]cachedResult),
	}
}

// Owner returns the configured repository owner.
func (c *Client) Owner() string { return c.owner }

// Repo returns the configured repository name.
func (c *Client) Repo() string { return c.repo }

// TreeURL returns the listing endpoint for a branch.
func (c *Client) TreeURL(branch string) string {
	return fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.apiBase, url.PathEscape(c.owner), url.PathEscape(c.repo), url.PathEscape(branch))
}

// ListBranch fetches the recursive tree of a branch and returns its file entries.
func (c *Client) ListBranch(ctx context.Context, branch string) ([]Entry, error) {
	if c.owner == "" || c.repo == "" {
		return nil, ErrNotConfigured
	}
	endpoint := c.TreeURL(branch)

	if c.memoize {
		c.mu.Lock()
		cached, ok := c.cache[endpoint]
		c.mu.Unlock()
		if ok {
			return cached.entries, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch tree %s: %v", ErrNetworkFailure, branch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: %d", ErrNonSuccessStatus, resp.StatusCode)
	}

	entries, err := ParseTree(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse tree %s: %w", branch, err)
	}
	entries = Blobs(entries)

	if c.memoize && len(entries) > 0 {
		c.mu.Lock()
		c.cache[endpoint] = cachedResult{entries: entries, timestamp: time.Now()}
		c.mu.Unlock()
	}
	return entries, nil
}

// ListItems fetches a category branch and maps its files to content items.
func (c *Client) ListItems(ctx context.Context, category types.CategoryID, icon types.Icon) ([]types.ContentItem, error) {
	entries, err := c.ListBranch(ctx, category.String())
	if err != nil {
		return nil, err
	}
	items := ItemsFromEntries(c.webBase, c.owner, c.repo, category.String(), icon, entries)
	if len(items) == 0 {
		return nil, ErrEmptyResult
	}
	return items, nil
}

// Reason returns a short machine-readable label for a listing error,
// suitable as a log field.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrNetworkFailure):
		return "network_failure"
	case errors.Is(err, ErrNonSuccessStatus):
		return "non_success_status"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, ErrEmptyResult):
		return "empty_result"
	default:
		return "unknown"
	}
}

// ClearCache clears the in-memory listing cache.
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cachedResult)
}
