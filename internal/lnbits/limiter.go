package lnbits

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the number of outstanding requests for one client. The
// configured rate-limit value is used as a concurrency ceiling: at most N
// requests are in flight at once, and an acquirer suspends until a permit is
// released rather than failing.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter creates a limiter allowing n outstanding permits.
func NewLimiter(n int) *Limiter {
	return &Limiter{sem: semaphore.NewWeighted(int64(n))}
}

// Acquire blocks until a permit is available or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release returns a permit. Must be paired 1:1 with a successful Acquire.
func (l *Limiter) Release() {
	l.sem.Release(1)
}
