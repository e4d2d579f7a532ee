// Package middleware contains Telegram bot middlewares for request processing.
package middleware

import (
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER MIDDLEWARE
// Protects the bot from command spam using a token bucket per user.
// Activity counting is NOT rate limited: every group message must be
// counted, the limiter only guards command and callback handling.
// ══════════════════════════════════════════════════════════════════════════════

// RateLimitConfig holds configuration for the rate limiter.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained request rate per user.
	RequestsPerMinute int

	// BurstSize is the bucket capacity.
	BurstSize int

	// CleanupInterval is how often idle buckets are dropped.
	CleanupInterval time.Duration

	// WhitelistedUsers are users exempt from rate limiting (admins).
	WhitelistedUsers map[int64]bool
}

// DefaultRateLimitConfig returns sensible defaults for rate limiting.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 20,
		BurstSize:         5,
		CleanupInterval:   5 * time.Minute,
		WhitelistedUsers:  make(map[int64]bool),
	}
}

// RateLimitResult represents the result of a rate limit check.
type RateLimitResult struct {
	// Allowed indicates if the request is allowed.
	Allowed bool

	// RetryAfter is how long the user should wait before retrying.
	RetryAfter time.Duration
}

// RateLimiter implements per-user rate limiting with token buckets.
type RateLimiter struct {
	config RateLimitConfig

	mu      sync.Mutex
	buckets map[int64]*tokenBucket

	now func() time.Time
}

// tokenBucket is one user's rate limit state.
type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		buckets: make(map[int64]*tokenBucket),
		now:     time.Now,
	}

	if config.CleanupInterval > 0 {
		go rl.cleanupLoop()
	}

	return rl
}

// Check checks if a request from the given user is allowed and consumes a
// token when it is.
func (rl *RateLimiter) Check(telegramID int64) RateLimitResult {
	if rl.config.WhitelistedUsers[telegramID] {
		return RateLimitResult{Allowed: true}
	}

	refillRate := float64(rl.config.RequestsPerMinute) / 60.0
	capacity := float64(rl.config.BurstSize)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[telegramID]
	if !ok {
		b = &tokenBucket{tokens: capacity, lastRefill: now}
		rl.buckets[telegramID] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * refillRate
	if b.tokens > capacity {
		b.tokens = capacity
	}
	b.lastRefill = now

	if b.tokens < 1 {
		wait := time.Duration((1 - b.tokens) / refillRate * float64(time.Second))
		return RateLimitResult{Allowed: false, RetryAfter: wait}
	}

	b.tokens--
	return RateLimitResult{Allowed: true}
}

// cleanupLoop periodically drops buckets that refilled to capacity long ago.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := rl.now().Add(-rl.config.CleanupInterval)

		rl.mu.Lock()
		for id, b := range rl.buckets {
			if b.lastRefill.Before(cutoff) {
				delete(rl.buckets, id)
			}
		}
		rl.mu.Unlock()
	}
}
