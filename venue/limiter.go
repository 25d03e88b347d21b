package venue

import (
	"context"
	"sync"
	"time"
)

// RateLimiter throttles outbound venue calls so a burst of swaps cannot trip
// the venue's request limits.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// TokenBucketLimiter refills capacity tokens per second; every take order and
// account read spends one.
type TokenBucketLimiter struct {
	mu         sync.Mutex
	refillRate float64
	capacity   float64
	available  float64
	lastRefill time.Time
}

func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucketLimiter{
		refillRate: rate,
		capacity:   float64(burst),
		available:  float64(burst),
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done.
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()
		l.available += now.Sub(l.lastRefill).Seconds() * l.refillRate
		if l.available > l.capacity {
			l.available = l.capacity
		}
		l.lastRefill = now
		if l.available >= 1 {
			l.available--
			l.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - l.available) / l.refillRate * float64(time.Second))
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
