// Package fetch implements the single-shot HTTP GET used for title lookups
// and QR generator calls.
//
// Redirects are followed with the net/http default policy and TLS
// certificates are verified. A response is accepted when its final status is
// in [200,400); bodies are read up to a configured limit.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrStatus reports a final status outside [200,400).
var ErrStatus = errors.New("unexpected HTTP status")

// Response is the part of an HTTP response the callers look at.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Truncated   bool // body was cut at MaxBytes
}

// Config configures the fetcher.
type Config struct {
	Timeout   time.Duration // Per-request timeout. Default: 15s.
	MaxBytes  int64         // Max body size. Default: 8MB.
	UserAgent string        // Default: "qrtable/1.0".
	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// Default values applied by Config.defaults.
const (
	DefaultTimeout   = 15 * time.Second
	DefaultMaxBytes  = 8 << 20
	DefaultUserAgent = "qrtable/1.0"
)

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

// Fetcher performs GET requests. It is safe for concurrent use.
type Fetcher struct {
	client *http.Client
	config Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{client: client, config: cfg}
}

// Get issues one GET to url. accept, when non-empty, is sent as the Accept
// header. maxBytes overrides the configured body limit when positive.
// A status outside [200,400) returns the response together with ErrStatus.
func (f *Fetcher) Get(ctx context.Context, url, accept string, maxBytes int64) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	out := &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return out, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	limit := f.config.MaxBytes
	if maxBytes > 0 {
		limit = maxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		body = body[:limit]
		out.Truncated = true
	}
	out.Body = body
	return out, nil
}
