package market

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter
type RateLimiter struct {
	requestsPerWindow int           // Maximum requests allowed per window
	windowDuration    time.Duration // Duration of the rate limit window
	burst             int           // Maximum burst size

	mu         sync.Mutex
	tokens     float64   // Current available tokens
	lastRefill time.Time // Last time tokens were refilled
}

// NewRateLimiter creates a new token bucket rate limiter
func NewRateLimiter(requestsPerWindow int, windowDuration time.Duration, burst int) *RateLimiter {
	if requestsPerWindow < 1 {
		requestsPerWindow = 1
	}
	if windowDuration <= 0 {
		windowDuration = time.Minute
	}
	if burst <= 0 {
		burst = max(requestsPerWindow/10, 1)
	}

	return &RateLimiter{
		requestsPerWindow: requestsPerWindow,
		windowDuration:    windowDuration,
		burst:             burst,
		tokens:            float64(burst), // Start with full burst capacity
		lastRefill:        time.Now(),
	}
}

// Wait blocks until a token is available or context is cancelled
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := rl.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Allow takes a token without blocking and reports whether one was available
func (rl *RateLimiter) Allow() bool {
	_, ok := rl.reserve()
	return ok
}

// reserve takes a token if one is available, otherwise returns the time until the next one
func (rl *RateLimiter) reserve() (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillTokens()

	if rl.tokens >= 1 {
		rl.tokens--
		return 0, true
	}

	perToken := rl.windowDuration / time.Duration(rl.requestsPerWindow)
	return time.Duration((1 - rl.tokens) * float64(perToken)), false
}

// refillTokens adds tokens based on time elapsed since last refill
func (rl *RateLimiter) refillTokens() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	rl.lastRefill = now

	rl.tokens += elapsed.Seconds() / rl.windowDuration.Seconds() * float64(rl.requestsPerWindow)
	if rl.tokens > float64(rl.burst) {
		rl.tokens = float64(rl.burst)
	}
}

// String returns a human-readable representation of the rate limiter
func (rl *RateLimiter) String() string {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillTokens()

	return fmt.Sprintf("RateLimiter(%.1f/%d tokens, %d req/%s)",
		rl.tokens, rl.burst, rl.requestsPerWindow, rl.windowDuration)
}
