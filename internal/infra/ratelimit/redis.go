package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"certledger/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter coordinates the verify limit across replicas. Each
// clock-aligned window gets its own counter key, so cleanup is a TTL
// slightly longer than the window; the INCR+EXPIRE pair runs in one
// transactional pipeline.
type RedisLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
	now      func() time.Time
}

func NewRedisLimiter(addr, password string, db, requests int, window time.Duration) (*RedisLimiter, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		requests: requests,
		window:   window,
		now:      time.Now,
	}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, clientIP string) (domain.RateLimitDecision, error) {
	if l.requests <= 0 {
		return domain.RateLimitDecision{Allowed: true, Limit: l.requests, Remaining: l.requests}, nil
	}
	start := l.now().Truncate(l.window)
	key := fmt.Sprintf("verify:ip:%s:%d", clientIP, start.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.RateLimitDecision{}, err
	}

	current := incr.Val()
	remaining := l.requests - int(current)
	if remaining < 0 {
		remaining = 0
	}
	return domain.RateLimitDecision{
		Allowed:   current <= int64(l.requests),
		Limit:     l.requests,
		Remaining: remaining,
		ResetAt:   start.Add(l.window),
	}, nil
}
