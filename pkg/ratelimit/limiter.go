// Package ratelimit guards the public waitlist form against duplicate
// submissions. It is an abuse deterrent, not a security boundary: the
// in-memory limiter is per-process, and the database's unique constraint on
// email remains the actual authority for duplicates.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Limiter tracks recent submissions keyed by normalized email.
type Limiter interface {
	// Blocked reports whether key submitted within the cooldown window.
	Blocked(ctx context.Context, key string) bool
	// Record marks key as having just submitted successfully.
	Record(ctx context.Context, key string)
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// MemoryLimiter is the single-instance implementation: a mutex-guarded map
// from email to last accepted submission time. Stale entries are swept on
// every check; the map stays small because the window is short.
type MemoryLimiter struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
	now    func() time.Time
}

func NewMemoryLimiter(window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Blocked(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, at := range l.seen {
		if now.Sub(at) > l.window {
			delete(l.seen, k)
		}
	}

	at, ok := l.seen[normalize(key)]
	return ok && now.Sub(at) < l.window
}

func (l *MemoryLimiter) Record(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[normalize(key)] = l.now()
}
