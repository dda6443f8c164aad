// Package supabase inserts records into a Supabase table through its
// PostgREST endpoint.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vvka-141/pairload/pkg/pairload"
)

// restPath is where Supabase mounts PostgREST.
const restPath = "/rest/v1/"

// Config holds the project URL and the service role key.
type Config struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// Client is a pairload.Sink backed by the Supabase REST API.
type Client struct {
	base *url.URL
	key  string
	http *http.Client
}

var _ pairload.SinkCloser = (*Client)(nil)

// New validates cfg and builds a client. No request is made.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil, fmt.Errorf("supabase: url and service key are required: %w", pairload.ErrMissingCredentials)
	}
	u, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("supabase: invalid url %q: %w", cfg.URL, pairload.ErrInvalidConfig)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("supabase: url %q must be an http(s) project URL: %w", cfg.URL, pairload.ErrInvalidConfig)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: pairload.DefaultHTTPTimeout}
	}
	return &Client{base: u, key: cfg.ServiceKey, http: cfg.HTTPClient}, nil
}

// APIError is a PostgREST error response.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "supabase: HTTP %d", e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Details != "" {
		b.WriteString(": " + e.Details)
	}
	if e.Hint != "" {
		b.WriteString(" (hint: " + e.Hint + ")")
	}
	return b.String()
}

// HTTPStatus exposes the status to retry classifiers.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Endpoint returns the insert URL for table.
func (c *Client) Endpoint(table string) string {
	return c.base.String() + restPath + url.PathEscape(table)
}

// Insert sends records as one JSON array in a single POST. It is never
// retried: a lost response could otherwise insert the batch twice.
func (c *Client) Insert(ctx context.Context, table string, records []pairload.Record) error {
	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("supabase: failed to encode records: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(table), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("supabase: failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Provider builds a Client once the loader has data to send.
type Provider struct {
	Config Config
}

// Validate checks the URL and key without contacting the service.
func (p *Provider) Validate() error {
	_, err := New(p.Config)
	return err
}

// Open returns a ready Client. Supabase clients hold no connection until
// the first request.
func (p *Provider) Open(context.Context) (pairload.SinkCloser, error) {
	c, err := New(p.Config)
	if err != nil {
		return nil, err
	}
	return c, nil
}
