// Package ratelimit provides the caller-facing request limiter: a fixed
// window per client key, backed either by process memory or by Redis when
// several instances must share a budget.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultWindow is the fixed-window length used by both limiter backings.
const DefaultWindow = time.Minute

// Decision is the outcome of one Allow call plus the metadata the HTTP layer
// turns into X-RateLimit-* headers.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether a caller may run the pipeline right now.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter is a fixed-window in-process limiter.
type MemoryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	counts map[string]*windowCount

	// now is the limiter clock, replaceable in tests.
	now func() time.Time
}

type windowCount struct {
	start time.Time
	hits  int
}

// NewMemoryLimiter allows limit requests per key per window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		counts: make(map[string]*windowCount),
		now:    time.Now,
	}
}

// Allow counts one request against key's current window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	wc, ok := l.counts[key]
	if !ok || now.Sub(wc.start) >= l.window {
		wc = &windowCount{start: now}
		l.counts[key] = wc
	}

	wc.hits++
	remaining := l.limit - wc.hits
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   wc.hits <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		Reset:     wc.start.Add(l.window),
	}, nil
}
