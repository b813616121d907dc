package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("lock held by another process")

// Locker serialises critical sections. With Redis the lock spans every API
// instance; without it the lock only covers the current process.
type Locker struct {
	client *redislock.Client

	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocker wraps a Redis client. A nil client falls back to process-local
// locks, which are enough for single-instance deployments.
func NewLocker(rdb *redis.Client) *Locker {
	if rdb == nil {
		return &Locker{held: make(map[string]struct{})}
	}
	return &Locker{client: redislock.New(rdb)}
}

// Acquire obtains key for ttl and returns a release func. It does not wait:
// a key that is already held yields ErrLockHeld.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if l.client == nil {
		return l.acquireLocal(key)
	}
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockHeld
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func() {
		_ = lock.Release(context.Background())
	}, nil
}

// acquireLocal ignores ttl; the holder always releases through the returned func.
func (l *Locker) acquireLocal(key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[string]struct{})
	}
	if _, busy := l.held[key]; busy {
		return nil, ErrLockHeld
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
