package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ragcrawl/ragcrawl/internal/htmldoc"
)

// Default fetch settings.
const (
	// DefaultTimeout bounds each HTTP request. Ten seconds is generous
	// for ordinary sites without letting a dead server stall the crawl.
	DefaultTimeout = 10 * time.Second

	// DefaultDelay is the fixed pause after each successful fetch.
	// This is a politeness setting to avoid overwhelming servers.
	DefaultDelay = 1 * time.Second

	// DefaultUserAgent identifies ragcrawl in HTTP requests. A
	// descriptive User-Agent lets operators identify crawler traffic.
	DefaultUserAgent = "ragcrawl/1.0 (+https://github.com/ragcrawl/ragcrawl)"

	// DefaultMaxBodySize limits the response body size to read.
	// 5MB is sufficient for HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024
)

// Client fetches pages over HTTP and parses them into documents.
type Client struct {
	// httpClient performs the requests. Injectable for tests.
	httpClient *http.Client

	// delay is the fixed pause applied after each successful fetch.
	delay time.Duration

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits how many response bytes are read.
	maxBodySize int64

	// headers are extra request headers, e.g. site-specific auth.
	headers map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithDelay sets the fixed post-fetch delay.
func WithDelay(d time.Duration) Option {
	return func(c *Client) {
		c.delay = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithHeaders sets extra request headers sent with every fetch.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
// This overrides any timeout set before it; tests use it to plug in
// httptest server clients.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a fetch client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		delay:       DefaultDelay,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch retrieves and parses one page. Any failure (transport error,
// non-2xx status, unreadable body) is returned as an error; callers treat
// an error as "no document" and move on. After a successful fetch the
// configured politeness delay is observed, interruptible via ctx.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*htmldoc.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBodySize))
		return nil, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	doc, err := htmldoc.Parse(pageURL, io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	if c.delay > 0 {
		select {
		case <-ctx.Done():
			return doc, nil
		case <-time.After(c.delay):
		}
	}

	return doc, nil
}
