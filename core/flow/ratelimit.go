package flow

import (
	"context"
	"sync"
	"time"
)

// RateLimiter throttles login attempts before any credential or lockout
// work happens. It is optional and disabled by default; the lockout
// policy remains the per-account guard either way.
type RateLimiter interface {
	// Allow checks whether a request under key is within limit for the
	// current window. remaining is how many requests are left.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, err error)

	// Reset clears the counter for the key.
	Reset(ctx context.Context, key string) error
}

type memWindow struct {
	count   int
	resetAt time.Time
}

// MemoryRateLimiter is a fixed-window limiter for single-process
// deployments. Multi-instance deployments should use the Redis limiter.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*memWindow
	now     func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		windows: make(map[string]*memWindow),
		now:     time.Now,
	}
}

func (l *MemoryRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &memWindow{resetAt: now.Add(window)}
		l.windows[key] = w
	}

	w.count++
	if w.count > limit {
		return false, 0, nil
	}
	return true, limit - w.count, nil
}

func (l *MemoryRateLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}
