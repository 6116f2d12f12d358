package dropbox

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimit stays well below the per-user limits Dropbox enforces.
var DefaultRateLimit = RateLimitConfig{RequestsPerSecond: 10, BurstSize: 10}

// defaultBackoff applies when a 429 carries no Retry-After value.
const defaultBackoff = 60 * time.Second

// RateLimiter is a token bucket with a server-directed backoff window.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter. A zero config uses DefaultRateLimit.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg = DefaultRateLimit
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		now:     time.Now,
	}
}

// Wait blocks until a request may be made, honouring any backoff window.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	wait := r.retryAt.Sub(r.now())
	r.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError opens a backoff window after a 429 response.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if until := r.now().Add(retryAfter); until.After(r.retryAt) {
		r.retryAt = until
	}
}
