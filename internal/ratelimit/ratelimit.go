package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// InMemoryLimiter keeps one token bucket per key.
type InMemoryLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	r        rate.Limit // Rate of adding tokens
	b        int        // Bucket size
	now      func() time.Time
}

// NewInMemoryLimiter creates a new rate limiter
// Example: NewInMemoryLimiter(30, time.Minute, 10) -> 30 requests a minute per key, burst of 10
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	if requests <= 0 {
		requests = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &InMemoryLimiter{
		visitors: make(map[string]*visitor),
		r:        rate.Every(per / time.Duration(requests)),
		b:        burst,
		now:      time.Now,
	}
}

// Allow checks if key is allowed to perform a request
func (l *InMemoryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, exists := l.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(l.r, l.b)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// Prune forgets keys idle for longer than idle and returns how many were dropped.
func (l *InMemoryLimiter) Prune(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	removed := 0
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
			removed++
		}
	}
	return removed
}

func (l *InMemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
