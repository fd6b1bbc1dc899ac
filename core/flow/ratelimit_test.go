package flow

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryRateLimiterWindow(t *testing.T) {
	limiter := NewMemoryRateLimiter()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(ctx, "login:ana", 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d denied under limit", i)
		}
	}

	allowed, _, _ := limiter.Allow(ctx, "login:ana", 3, time.Minute)
	if allowed {
		t.Error("request over limit allowed")
	}

	// Other keys are unaffected.
	if allowed, _, _ = limiter.Allow(ctx, "login:bo", 3, time.Minute); !allowed {
		t.Error("unrelated key denied")
	}

	// The window rolls over.
	now = now.Add(61 * time.Second)
	if allowed, _, _ = limiter.Allow(ctx, "login:ana", 3, time.Minute); !allowed {
		t.Error("request after window rollover denied")
	}
}

func TestMemoryRateLimiterReset(t *testing.T) {
	limiter := NewMemoryRateLimiter()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		limiter.Allow(ctx, "k", 1, time.Minute)
	}
	if err := limiter.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if allowed, _, _ := limiter.Allow(ctx, "k", 1, time.Minute); !allowed {
		t.Error("request denied after reset")
	}
}

func TestRedisRateLimiter(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	limiter := NewRedisRateLimiter(client, "")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, remaining, err := limiter.Allow(ctx, "login:ana", 2, time.Minute)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d denied under limit", i)
		}
		if remaining != 1-i {
			t.Errorf("remaining = %d, want %d", remaining, 1-i)
		}
	}

	if allowed, _, _ := limiter.Allow(ctx, "login:ana", 2, time.Minute); allowed {
		t.Error("request over limit allowed")
	}

	// The counter expires with the window.
	srv.FastForward(61 * time.Second)
	if allowed, _, err := limiter.Allow(ctx, "login:ana", 2, time.Minute); err != nil || !allowed {
		t.Errorf("request after expiry denied (allowed=%v, err=%v)", allowed, err)
	}
}

func TestRedisRateLimiterReset(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	limiter := NewRedisRateLimiter(client, "")
	ctx := context.Background()

	limiter.Allow(ctx, "k", 1, time.Minute)
	limiter.Allow(ctx, "k", 1, time.Minute)
	if err := limiter.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if allowed, _, _ := limiter.Allow(ctx, "k", 1, time.Minute); !allowed {
		t.Error("request denied after reset")
	}
}
