package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	Allow(key string) bool
}

// InMemoryLimiter is an implementation of Limiter stored in memory, one
// token bucket per key (typically a client address).
type InMemoryLimiter struct {
	buckets map[string]*rate.Limiter
	mu      sync.Mutex
	r       rate.Limit
	b       int
}

// NewInMemoryLimiter creates a new rate limiter.
// Example: NewInMemoryLimiter(1, 5*time.Second, 3) -> allows 1 request every 5 seconds, burst of 3
func NewInMemoryLimiter(requests int, per time.Duration, burst int) Limiter {
	return &InMemoryLimiter{
		buckets: make(map[string]*rate.Limiter),
		r:       rate.Every(per / time.Duration(requests)),
		b:       burst,
	}
}

// Allow checks if the given key is allowed to perform an action
func (l *InMemoryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.buckets[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.buckets[key] = limiter
	}

	return limiter.Allow()
}
