package service

import (
	"context"
	"sync"
	"time"
)

// LocalRateLimiter keeps a sliding window log per key in process memory,
// counting the same way as RedisRateLimiter. It serves single-instance
// deployments running without Redis.
type LocalRateLimiter struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

var _ RateLimiter = (*LocalRateLimiter)(nil)

func NewLocalRateLimiter() *LocalRateLimiter {
	return &LocalRateLimiter{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	if limit <= 0 || window <= 0 {
		return &RateLimitResult{Allowed: true}, nil
	}
	now := l.now()
	windowStart := now.Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now, window)

	hits := dropBefore(l.hits[key], windowStart)
	if len(hits) >= limit {
		l.hits[key] = hits
		return &RateLimitResult{Allowed: false, RetryAfter: window - now.Sub(hits[0])}, nil
	}

	l.hits[key] = append(hits, now)
	return &RateLimitResult{Allowed: true, Remaining: limit - len(hits) - 1}, nil
}

// sweep forgets keys with no hit inside the window, at most once per window.
// Caller holds the lock.
func (l *LocalRateLimiter) sweep(now time.Time, window time.Duration) {
	if now.Sub(l.lastSweep) < window {
		return
	}
	l.lastSweep = now

	windowStart := now.Add(-window)
	for key, hits := range l.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(windowStart) {
			delete(l.hits, key)
		}
	}
}

// dropBefore removes hits at or before start. Hits are kept in arrival order.
func dropBefore(hits []time.Time, start time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(start) {
		i++
	}
	return hits[i:]
}
