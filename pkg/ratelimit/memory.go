package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps counters in process memory. Counters are not shared
// between instances, so it is only correct for single-instance deployments.
type MemoryLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*window
}

// NewMemoryLimiter creates a limiter allowing max attempts per window.
func NewMemoryLimiter(max int, win time.Duration) *MemoryLimiter {
	if max <= 0 {
		max = 5
	}
	if win <= 0 {
		win = 15 * time.Minute
	}
	return &MemoryLimiter{
		max:     max,
		window:  win,
		now:     time.Now,
		entries: make(map[string]*window),
	}
}

// Allow records an attempt for key.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &window{resetAt: now.Add(l.window)}
		l.entries[key] = entry
	}

	if entry.count >= l.max {
		return Decision{Allowed: false, RetryAfter: entry.resetAt.Sub(now)}, nil
	}
	entry.count++
	return Decision{Allowed: true, Remaining: l.max - entry.count}, nil
}

// Sweep drops expired windows and returns how many were removed. Callers
// schedule it; nothing sweeps automatically.
func (l *MemoryLimiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, entry := range l.entries {
		if !now.Before(entry.resetAt) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
