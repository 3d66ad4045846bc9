// Package ratelimit limits public certificate verification per client IP.
// Both limiters count in fixed windows aligned to the wall clock (the
// current time truncated to the window size): every client resets at the
// same instant, which lets the memory limiter drop all counters in one go
// and the redis limiter expire whole window buckets by TTL.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"certledger/internal/domain"
)

// Distinct IPs tracked per window. Beyond this the limiter reports an error
// and the verify endpoint fails open.
const maxTrackedIPs = 10000

type MemoryLimiter struct {
	requests int
	window   time.Duration
	now      func() time.Time

	mu          sync.Mutex
	windowStart time.Time
	counts      map[string]int
}

func NewMemoryLimiter(requests int, window time.Duration) *MemoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		requests: requests,
		window:   window,
		now:      time.Now,
		counts:   make(map[string]int),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, clientIP string) (domain.RateLimitDecision, error) {
	if l.requests <= 0 {
		return domain.RateLimitDecision{Allowed: true, Limit: l.requests, Remaining: l.requests}, nil
	}
	start := l.now().Truncate(l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	if !start.Equal(l.windowStart) {
		l.windowStart = start
		l.counts = make(map[string]int)
	}
	resetAt := start.Add(l.window)

	n, seen := l.counts[clientIP]
	if !seen && len(l.counts) >= maxTrackedIPs {
		return domain.RateLimitDecision{}, errors.New("rate limiter tracking capacity exceeded")
	}
	if n >= l.requests {
		return domain.RateLimitDecision{Limit: l.requests, ResetAt: resetAt}, nil
	}
	l.counts[clientIP] = n + 1
	return domain.RateLimitDecision{
		Allowed:   true,
		Limit:     l.requests,
		Remaining: l.requests - n - 1,
		ResetAt:   resetAt,
	}, nil
}
