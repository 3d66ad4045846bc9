package domain

import (
	"context"
	"time"
)

// RateLimitDecision carries the outcome of a limit check plus the values the
// HTTP layer exposes as RateLimit-* headers.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter guards the public verification endpoint. Implementations key
// on the client IP only; the limit and window are fixed at construction.
type RateLimiter interface {
	Allow(ctx context.Context, clientIP string) (RateLimitDecision, error)
}
