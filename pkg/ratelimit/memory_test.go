package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewMemoryLimiter(2, time.Minute)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(context.Background(), "login:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := limiter.Allow(context.Background(), "login:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Minute, d.RetryAfter)

	other, err := limiter.Allow(context.Background(), "login:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestMemoryLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	d, _ := limiter.Allow(context.Background(), "k")
	assert.True(t, d.Allowed)
	d, _ = limiter.Allow(context.Background(), "k")
	assert.False(t, d.Allowed)

	now = now.Add(time.Minute)
	d, _ = limiter.Allow(context.Background(), "k")
	assert.True(t, d.Allowed)
}

func TestMemoryLimiterSweepRemovesExpired(t *testing.T) {
	limiter := NewMemoryLimiter(3, time.Minute)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	_, _ = limiter.Allow(context.Background(), "a")
	now = now.Add(30 * time.Second)
	_, _ = limiter.Allow(context.Background(), "b")
	require.Equal(t, 2, limiter.Len())

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, limiter.Sweep())
	assert.Equal(t, 1, limiter.Len())
}
