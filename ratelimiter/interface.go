package ratelimiter

import (
	"time"
)

// Limiter defines the interface for request limiters.
// Implementations can be local (in-memory) or distributed.
type Limiter interface {
	// TryAcquire atomically checks capacity and takes one request slot if available.
	TryAcquire() bool

	// TimeUntilAvailable returns how long until a slot would be available (read-only).
	TimeUntilAvailable() time.Duration
}
