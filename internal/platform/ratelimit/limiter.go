package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between outbound calls through a single
// shared marker. Concurrent callers each reserve the next free slot under the
// lock, so no two callers can be released inside the same interval window.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		now:      time.Now,
	}
}

// Wait blocks until the caller's reserved slot opens or the context is
// cancelled. The slot is consumed either way: a caller that reserves and then
// fails still moves the marker forward, matching "the slot was spent".
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.interval <= 0 {
		return ctx.Err()
	}

	delay := l.reserve(l.now())
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// reserve claims the next dispatch slot and returns how long the caller must
// wait before using it.
func (l *Limiter) reserve(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	target := l.last.Add(l.interval)
	if target.Before(now) {
		target = now
	}
	l.last = target
	return target.Sub(now)
}

// Interval reports the configured minimum spacing.
func (l *Limiter) Interval() time.Duration {
	if l == nil {
		return 0
	}
	return l.interval
}
