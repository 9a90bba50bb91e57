package campapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetcher is the read surface of the campground API. It is implemented by
// *Client and faked in tests.
type Fetcher interface {
	FetchCampsites(ctx context.Context) ([]Campsite, error)
	FetchComments(ctx context.Context) ([]Comment, error)
	FetchPromotions(ctx context.Context) ([]Promotion, error)
	FetchPartners(ctx context.Context) ([]Partner, error)
}

var _ Fetcher = (*Client)(nil)

// StatusError reports a non-2xx response.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// Client talks to the campground HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	// DefaultBaseURL points at a local json-server instance.
	DefaultBaseURL        = "http://localhost:3001/"
	defaultUserAgent      = "trailhead/0.1"
	defaultRequestTimeout = 5 * time.Second
)

// NewClient builds a Client rooted at baseURL. A zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchCampsites retrieves the campsite directory.
func (c *Client) FetchCampsites(ctx context.Context) ([]Campsite, error) {
	return fetchList[Campsite](ctx, c, "campsites")
}

// FetchComments retrieves every comment for every campsite.
func (c *Client) FetchComments(ctx context.Context) ([]Comment, error) {
	return fetchList[Comment](ctx, c, "comments")
}

// FetchPromotions retrieves the promotion list.
func (c *Client) FetchPromotions(ctx context.Context) ([]Promotion, error) {
	return fetchList[Promotion](ctx, c, "promotions")
}

// FetchPartners retrieves the partner list.
func (c *Client) FetchPartners(ctx context.Context) ([]Partner, error) {
	return fetchList[Partner](ctx, c, "partners")
}

func fetchList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []T
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = []T{}
	}
	return payload, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Path: reqURL.Path, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
