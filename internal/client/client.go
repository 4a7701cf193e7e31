// Package client fetches list pages from a tradeboard API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/HerbHall/tradeboard/internal/version"
	"github.com/HerbHall/tradeboard/pkg/listquery"
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit paces outgoing requests to rps per second. rps <= 0
// disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// Client is an HTTP client for the tradeboard list API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// problem is the RFC 7807 body non-list routes and middleware answer with.
type problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Fetcher returns a fetch function that GETs path with the transformed
// query. Network and decoding failures are returned as errors; any
// decodable envelope is returned as is, whatever the status code.
func Fetcher[T any](c *Client, path string) listquery.FetchFunc[T] {
	return func(ctx context.Context, params listquery.Params) (*listquery.Response[T], error) {
		status, ctype, body, err := c.get(ctx, path, params.Values())
		if err != nil {
			return nil, err
		}

		if mt, _, _ := mime.ParseMediaType(ctype); mt == "application/problem+json" {
			var p problem
			if err := json.Unmarshal(body, &p); err != nil {
				return nil, fmt.Errorf("decode problem (status %d): %w", status, err)
			}
			msg := p.Detail
			if msg == "" {
				msg = p.Title
			}
			return &listquery.Response[T]{Success: false, Message: msg}, nil
		}

		var resp listquery.Response[T]
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode response (status %d): %w", status, err)
		}
		if !resp.Success && resp.Message == "" && status >= http.StatusBadRequest {
			resp.Message = http.StatusText(status)
		}
		return &resp, nil
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (int, string, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, "", nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return 0, "", nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, "", nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("HTTP response",
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.StatusCode, resp.Header.Get("Content-Type"), body, nil
}
