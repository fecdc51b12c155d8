// Package ratelimit provides per-client token buckets for the public API and
// an hourly comparison-creation budget.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/webriots/rate"
)

const (
	// DefaultBuckets is the bucket count for ClientLimiter. Clients hashing to
	// the same bucket share tokens until the next seed rotation.
	DefaultBuckets = 1 << 14

	rotation = 10 * time.Minute
)

// ClientLimiter rate-limits requests per client key (usually the client IP)
// using lock-free rotating token buckets.
type ClientLimiter struct {
	buckets *rate.RotatingTokenBucketRateLimiter
}

// NewClientLimiter allows perMinute requests per client with a burst of the
// same size, capped at 255. One token refills every minute/perMinute. A
// non-positive perMinute disables limiting.
func NewClientLimiter(perMinute int) (*ClientLimiter, error) {
	if perMinute <= 0 {
		return &ClientLimiter{}, nil
	}
	burst := perMinute
	if burst > 255 {
		burst = 255
	}
	rl, err := rate.NewRotatingTokenBucketRateLimiter(
		DefaultBuckets,
		uint8(burst),
		1,
		time.Minute/time.Duration(perMinute),
		rotation,
	)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: client limiter: %w", err)
	}
	return &ClientLimiter{buckets: rl}, nil
}

// Allow takes a token for client and reports whether one was available.
func (l *ClientLimiter) Allow(client string) bool {
	if l == nil || l.buckets == nil {
		return true
	}
	return l.buckets.TakeToken([]byte(client))
}

// Peek reports whether client has a token left without taking it.
func (l *ClientLimiter) Peek(client string) bool {
	if l == nil || l.buckets == nil {
		return true
	}
	return l.buckets.Check([]byte(client))
}
