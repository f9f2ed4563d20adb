package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Unlimited(t *testing.T) {
	l := New(0)

	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.True(t, l.Allow())
}

func TestLimiter_BurstThenThrottle(t *testing.T) {
	l := New(1)

	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := New(0.001)
	require.True(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, l.Wait(ctx))
}

func TestLimiter_Backoff(t *testing.T) {
	l := New(0)
	l.Backoff(time.Hour)

	assert.False(t, l.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}

func TestLimiter_BackoffDefault(t *testing.T) {
	l := New(0)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return start }

	l.Backoff(0)

	assert.Equal(t, start.Add(DefaultBackoff), l.retryAt)
	l.now = func() time.Time { return start.Add(DefaultBackoff + time.Second) }
	assert.True(t, l.Allow())
}
