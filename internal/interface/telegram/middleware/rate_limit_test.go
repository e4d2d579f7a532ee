package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(cfg RateLimitConfig) (*RateLimiter, *time.Time) {
	// CleanupInterval zero keeps the background goroutine out of tests.
	cfg.CleanupInterval = 0
	rl := NewRateLimiter(cfg)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_BurstThenBlocked(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	cfg.BurstSize = 3
	rl, _ := newTestLimiter(cfg)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Check(1).Allowed, "request %d", i)
	}

	res := rl.Check(1)
	require.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestRateLimiter_TokensRefillOverTime(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	cfg.RequestsPerMinute = 60 // one token per second
	cfg.BurstSize = 1
	rl, now := newTestLimiter(cfg)

	require.True(t, rl.Check(1).Allowed)
	require.False(t, rl.Check(1).Allowed)

	*now = now.Add(time.Second)
	assert.True(t, rl.Check(1).Allowed)
}

func TestRateLimiter_UsersAreIndependent(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	cfg.BurstSize = 1
	rl, _ := newTestLimiter(cfg)

	require.True(t, rl.Check(1).Allowed)
	require.False(t, rl.Check(1).Allowed)
	assert.True(t, rl.Check(2).Allowed)
}

func TestRateLimiter_WhitelistedUserNeverBlocked(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	cfg.BurstSize = 1
	cfg.WhitelistedUsers = map[int64]bool{42: true}
	rl, _ := newTestLimiter(cfg)

	for i := 0; i < 50; i++ {
		require.True(t, rl.Check(42).Allowed)
	}
}
