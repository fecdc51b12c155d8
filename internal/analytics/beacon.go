package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/salaryrace/salaryrace-go/internal/domain"
)

// Path is the analytics endpoint relative to the server base URL.
const Path = "/api/analytics"

// Beacon posts events to a salaryrace server. Failures are logged at debug
// and returned; callers treat them as best effort.
type Beacon struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *slog.Logger
}

// BeaconOption configures a Beacon.
type BeaconOption func(*Beacon)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) BeaconOption {
	return func(b *Beacon) { b.client = c }
}

// WithRate limits the beacon to perSecond events with the given burst.
func WithRate(perSecond float64, burst int) BeaconOption {
	return func(b *Beacon) { b.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithTimeout bounds each post.
func WithTimeout(d time.Duration) BeaconOption {
	return func(b *Beacon) { b.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) BeaconOption {
	return func(b *Beacon) { b.logger = l }
}

// NewBeacon returns a Beacon posting to baseURL + Path.
func NewBeacon(baseURL string, opts ...BeaconOption) *Beacon {
	b := &Beacon{
		endpoint: strings.TrimRight(baseURL, "/") + Path,
		client:   http.DefaultClient,
		limiter:  rate.NewLimiter(rate.Limit(5), 10),
		timeout:  3 * time.Second,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Report posts {"type": typ, ...payload}. Events over the rate are dropped
// without error.
func (b *Beacon) Report(ctx context.Context, typ domain.EventType, payload map[string]any) error {
	if !b.limiter.Allow() {
		b.logger.Debug("analytics beacon throttled", "type", typ)
		return nil
	}
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["type"] = string(typ)

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("analytics: encode %s: %w", typ, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("analytics: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Debug("analytics beacon failed", "type", typ, "error", err)
		return fmt.Errorf("analytics: post %s: %w", typ, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		b.logger.Debug("analytics beacon rejected", "type", typ, "status", resp.StatusCode)
		return fmt.Errorf("analytics: post %s: status %d", typ, resp.StatusCode)
	}
	return nil
}
