package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/simonesiega/studyWS/internal/config"
)

func newTestLimiter(t *testing.T, rules map[string]config.RateLimitRule) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, config.RateLimitConfig{
		Rules:     rules,
		Retention: 24 * time.Hour,
	}), mr
}

func TestAllowEnforcesWindowCount(t *testing.T) {
	limiter, _ := newTestLimiter(t, map[string]config.RateLimitRule{
		"/auth/login": {MaxRequests: 5, Window: time.Minute},
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if !limiter.Allow(ctx, "/auth/login", "10.0.0.1") {
			t.Fatalf("request %d rejected, want admitted", i+1)
		}
	}

	if limiter.Allow(ctx, "/auth/login", "10.0.0.1") {
		t.Error("sixth request admitted, want rejected")
	}
}

func TestAllowIsolatesClients(t *testing.T) {
	limiter, _ := newTestLimiter(t, map[string]config.RateLimitRule{
		"/auth/login": {MaxRequests: 1, Window: time.Minute},
	})
	ctx := context.Background()

	if !limiter.Allow(ctx, "/auth/login", "10.0.0.1") {
		t.Fatal("first client rejected")
	}
	if limiter.Allow(ctx, "/auth/login", "10.0.0.1") {
		t.Error("first client not limited on second request")
	}
	if !limiter.Allow(ctx, "/auth/login", "10.0.0.2") {
		t.Error("second client rejected by first client's window")
	}
}

func TestAllowIsolatesEndpoints(t *testing.T) {
	limiter, _ := newTestLimiter(t, map[string]config.RateLimitRule{
		"/auth/login":    {MaxRequests: 1, Window: time.Minute},
		"/auth/register": {MaxRequests: 1, Window: time.Minute},
	})
	ctx := context.Background()

	if !limiter.Allow(ctx, "/auth/login", "10.0.0.1") {
		t.Fatal("login rejected")
	}
	if !limiter.Allow(ctx, "/auth/register", "10.0.0.1") {
		t.Error("register rejected by login's window")
	}
}

func TestAllowWindowSlides(t *testing.T) {
	limiter, _ := newTestLimiter(t, map[string]config.RateLimitRule{
		"/auth/login": {MaxRequests: 1, Window: 50 * time.Millisecond},
	})
	ctx := context.Background()

	if !limiter.Allow(ctx, "/auth/login", "10.0.0.1") {
		t.Fatal("first request rejected")
	}
	if limiter.Allow(ctx, "/auth/login", "10.0.0.1") {
		t.Fatal("second request admitted inside the window")
	}

	time.Sleep(60 * time.Millisecond)

	if !limiter.Allow(ctx, "/auth/login", "10.0.0.1") {
		t.Error("request rejected after the window slid past the old entry")
	}
}

func TestAllowUnconfiguredEndpoint(t *testing.T) {
	limiter, _ := newTestLimiter(t, map[string]config.RateLimitRule{
		"/auth/login": {MaxRequests: 1, Window: time.Minute},
	})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if !limiter.Allow(ctx, "/workspaces", "10.0.0.1") {
			t.Fatal("unconfigured endpoint rejected")
		}
	}
}

func TestAllowFailsOpenOnStorageFault(t *testing.T) {
	limiter, mr := newTestLimiter(t, map[string]config.RateLimitRule{
		"/auth/login": {MaxRequests: 1, Window: time.Minute},
	})
	ctx := context.Background()

	mr.Close()

	for i := 0; i < 3; i++ {
		if !limiter.Allow(ctx, "/auth/login", "10.0.0.1") {
			t.Error("request rejected while the store is down, want fail-open")
		}
	}
}
