package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(), "token %d should be available", i)
	}
	assert.False(t, rl.Allow(), "bucket should be empty after burst")
}

func TestRateLimiterWaitCancelled(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, 1)
	require.True(t, rl.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(100, time.Second, 1)
	require.True(t, rl.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, rl.Wait(ctx))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(0, time.Second, 0)
	assert.Equal(t, 1, rl.burst)
	assert.Equal(t, 1, rl.requestsPerWindow)
	assert.Contains(t, rl.String(), "RateLimiter(")
}
