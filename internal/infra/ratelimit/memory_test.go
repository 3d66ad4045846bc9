package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterFixedWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(3, time.Minute)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if d.Remaining != 3-i-1 {
			t.Fatalf("request %d remaining %d", i, d.Remaining)
		}
	}

	d, err := limiter.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed {
		t.Fatalf("fourth request must be denied")
	}
	if !d.ResetAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("reset at %v", d.ResetAt)
	}

	// Other clients are unaffected.
	if d, _ := limiter.Allow(ctx, "5.6.7.8"); !d.Allowed {
		t.Fatalf("independent client should be allowed")
	}
}

func TestMemoryLimiterWindowResets(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 30, 0, time.UTC)
	limiter := NewMemoryLimiter(1, time.Minute)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	limiter.Allow(ctx, "ip")
	if d, _ := limiter.Allow(ctx, "ip"); d.Allowed {
		t.Fatalf("expected denial inside window")
	}

	// Windows align to the clock: 12:00:30 counts toward the 12:00 window,
	// which ends at 12:01 regardless of when the first request arrived.
	now = time.Date(2024, 6, 1, 12, 1, 0, 0, time.UTC)
	if d, _ := limiter.Allow(ctx, "ip"); !d.Allowed {
		t.Fatalf("expected new window to allow")
	}
}

func TestMemoryLimiterResetDropsAllClients(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(1, time.Minute)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	limiter.Allow(ctx, "a")
	limiter.Allow(ctx, "b")
	now = now.Add(time.Minute)
	limiter.Allow(ctx, "c")
	limiter.mu.Lock()
	tracked := len(limiter.counts)
	limiter.mu.Unlock()
	if tracked != 1 {
		t.Fatalf("stale window counters survived the reset: %d", tracked)
	}
}

func TestMemoryLimiterZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter(0, time.Minute)
	d, err := limiter.Allow(context.Background(), "ip")
	if err != nil || !d.Allowed {
		t.Fatalf("zero limit should disable limiting: %+v %v", d, err)
	}
}
