package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single limiter check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter throttles attempts per key using a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
