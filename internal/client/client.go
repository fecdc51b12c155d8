// Package client is an HTTP client for the salaryrace JSON API, used by the
// CLI and the ad probe.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/salaryrace/salaryrace-go/internal/analytics"
	"github.com/salaryrace/salaryrace-go/internal/compare"
	"github.com/salaryrace/salaryrace-go/internal/domain"
)

// ErrNotFound is returned when the API answers 404.
var ErrNotFound = errors.New("client: not found")

// APIError is a non-2xx response carrying the API's error body.
type APIError struct {
	Status  int
	Message string
	Hint    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("client: status %d: %s", e.Status, e.Message)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// Is matches ErrNotFound for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client calls the salaryrace API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a client for the API at endpoint, with traced requests.
func New(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(endpoint string, httpClient *http.Client) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// Endpoint returns the API base URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Created is the response to a create call.
type Created struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// Create posts a new comparison.
func (c *Client) Create(ctx context.Context, in domain.CreateInput) (Created, error) {
	body, err := json.Marshal(map[string]string{
		"nameA":    in.NameA,
		"nameB":    in.NameB,
		"annualA":  in.AnnualA,
		"annualB":  in.AnnualB,
		"currency": in.Currency,
	})
	if err != nil {
		return Created{}, fmt.Errorf("client: encode request: %w", err)
	}
	var out Created
	err = c.do(ctx, http.MethodPost, "/api/create", nil, bytes.NewReader(body), "", &out)
	return out, err
}

// Get fetches a comparison by slug.
func (c *Client) Get(ctx context.Context, slug string) (domain.Comparison, error) {
	var out domain.Comparison
	err := c.do(ctx, http.MethodGet, "/api/compare/"+url.PathEscape(slug), nil, nil, "", &out)
	return out, err
}

// Counters samples both counters server-side.
func (c *Client) Counters(ctx context.Context, slug string) (compare.Snapshot, error) {
	var out compare.Snapshot
	err := c.do(ctx, http.MethodGet, "/api/compare/"+url.PathEscape(slug)+"/counters", nil, nil, "", &out)
	return out, err
}

// OG returns the share image SVG.
func (c *Client) OG(ctx context.Context, slug string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, "/api/og/"+url.PathEscape(slug), nil, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read image: %w", err)
	}
	return data, nil
}

// Health checks the API.
func (c *Client) Health(ctx context.Context) error {
	var out map[string]string
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, "", &out); err != nil {
		return err
	}
	if out["status"] != "ok" {
		return fmt.Errorf("client: unhealthy: %v", out)
	}
	return nil
}

// Analytics fetches the event summary with an admin bearer token.
func (c *Client) Analytics(ctx context.Context, token string, latest int) (analytics.Summary, error) {
	q := url.Values{}
	if latest > 0 {
		q.Set("latest", strconv.Itoa(latest))
	}
	var out analytics.Summary
	err := c.do(ctx, http.MethodGet, "/api/analytics", q, nil, token, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body io.Reader, token string, out any) error {
	resp, err := c.send(ctx, method, path, q, body, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// send issues the request and turns non-2xx responses into *APIError.
func (c *Client) send(ctx context.Context, method, path string, q url.Values, body io.Reader, token string) (*http.Response, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("client: invalid endpoint: %w", err)
	}
	u = u.JoinPath(path)
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb struct {
			Error string `json:"error"`
			Hint  string `json:"hint"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&eb) == nil && eb.Error != "" {
			apiErr.Message, apiErr.Hint = eb.Error, eb.Hint
		}
		return nil, apiErr
	}
	return resp, nil
}
