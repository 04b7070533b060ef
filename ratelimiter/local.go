package ratelimiter

import (
	"sync"
	"time"
)

// RequestLimiter caps requests per refill interval with a token bucket.
type RequestLimiter struct {
	bucket *TokenBucket
}

// Ensure RequestLimiter implements Limiter.
var _ Limiter = (*RequestLimiter)(nil)

// New creates a limiter allowing requestsPerMinute requests per minute.
func New(requestsPerMinute int) *RequestLimiter {
	return &RequestLimiter{
		bucket: NewTokenBucket(requestsPerMinute, requestsPerMinute, time.Minute),
	}
}

func (rl *RequestLimiter) TryAcquire() bool {
	return rl.bucket.TryConsume(1)
}

func (rl *RequestLimiter) TimeUntilAvailable() time.Duration {
	return rl.bucket.TimeUntilAvailable(1)
}

// TokenBucket implements a token bucket rate limit algorithm.
// The bucket refills completely once per refill interval.
type TokenBucket struct {
	mu             sync.Mutex
	capacity       int
	remaining      int
	refillInterval time.Duration
	lastRefill     time.Time
	now            func() time.Time
}

// NewTokenBucket creates a new token bucket.
func NewTokenBucket(capacity int, initialTokens int, refillInterval time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:       capacity,
		remaining:      initialTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
		now:            time.Now,
	}
}

// TryConsume atomically checks and consumes tokens.
func (tb *TokenBucket) TryConsume(tokens int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tokens <= tb.remaining {
		tb.remaining -= tokens
		return true
	}
	return false
}

// Remaining returns the tokens currently available.
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return tb.remaining
}

// TimeUntilAvailable returns how long until tokens would be available.
// A request larger than the capacity is never satisfiable; the full
// interval is returned for it.
func (tb *TokenBucket) TimeUntilAvailable(tokens int) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tokens <= tb.remaining {
		return 0
	}
	if wait := tb.refillInterval - tb.now().Sub(tb.lastRefill); wait > 0 {
		return wait
	}
	return 0
}

// refill must be called with tb.mu held.
func (tb *TokenBucket) refill() {
	now := tb.now()
	if now.Sub(tb.lastRefill) >= tb.refillInterval {
		tb.remaining = tb.capacity
		tb.lastRefill = now
	}
}
