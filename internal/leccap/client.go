package leccap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://leccap.engin.umich.edu"
	productPath    = "/leccap/viewer/api/product/"

	// recordingsMarker introduces the recordings list in a course page script.
	recordingsMarker = "recordings"
)

// Client talks to the portal on behalf of an already logged-in session.
type Client struct {
	baseURL    string
	cookie     string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing or another portal host).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSessionCookie sets the Cookie header sent with every request.
func WithSessionCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "leccap")
	}
}

// New creates a new portal client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Product fetches media metadata for a recording key.
func (c *Client) Product(ctx context.Context, key string) (*Product, error) {
	start := time.Now()

	endpoint := c.baseURL + productPath + "?rk=" + url.QueryEscape(key)
	resp, err := c.get(ctx, endpoint, "application/json")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLookupFailure, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrLookupFailure, key, resp.Status)
	}

	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedMetadata, key, err)
	}
	if err := product.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	if c.log != nil {
		c.log.Debug("product resolved", "key", key, "duration_ms", time.Since(start).Milliseconds())
	}
	return &product, nil
}

// CourseRecordings fetches a course page and returns the recordings listed in
// its script. pageURL may be absolute or a path on the portal.
func (c *Client) CourseRecordings(ctx context.Context, pageURL string) ([]Recording, error) {
	if strings.HasPrefix(pageURL, "/") {
		pageURL = c.baseURL + pageURL
	}

	resp, err := c.get(ctx, pageURL, "text/html")
	if err != nil {
		return nil, fmt.Errorf("fetch course page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch course page: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read course page: %w", err)
	}

	recs, err := ExtractRecordings(string(body))
	if err != nil {
		return nil, err
	}
	if c.log != nil {
		c.log.Debug("course page parsed", "url", pageURL, "recordings", len(recs))
	}
	return recs, nil
}

// ExtractRecordings finds the `recordings = [...]` assignment in a course
// page and decodes the array literal that follows it.
func ExtractRecordings(page string) ([]Recording, error) {
	rest := page
	for {
		i := strings.Index(rest, recordingsMarker)
		if i < 0 {
			return nil, ErrNoRecordings
		}
		rest = rest[i+len(recordingsMarker):]

		tail := strings.TrimLeft(rest, " \t\r\n")
		if !strings.HasPrefix(tail, "=") {
			continue
		}
		tail = strings.TrimLeft(tail[1:], " \t\r\n")
		if !strings.HasPrefix(tail, "[") {
			continue
		}

		// The decoder stops after the first complete value, so the
		// rest of the script is never parsed.
		var recs []Recording
		if err := json.NewDecoder(strings.NewReader(tail)).Decode(&recs); err != nil {
			return nil, fmt.Errorf("decode course recordings: %w", err)
		}
		return recs, nil
	}
}

func (c *Client) get(ctx context.Context, endpoint, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}
