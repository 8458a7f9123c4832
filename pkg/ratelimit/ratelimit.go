// Package ratelimit implements a sliding-window request limiter backed by
// Redis sorted sets. Every admitted request is logged as an entry scored by
// its timestamp; the admission decision counts entries inside the trailing
// window, so bursts are bounded strictly by the logged count.
package ratelimit

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/simonesiega/studyWS/internal/config"
)

type Limiter struct {
	redis     redis.UniversalClient
	rules     map[string]config.RateLimitRule
	retention time.Duration
}

func New(redisClient redis.UniversalClient, cfg config.RateLimitConfig) *Limiter {
	retention := cfg.Retention
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &Limiter{
		redis:     redisClient,
		rules:     cfg.Rules,
		retention: retention,
	}
}

// Allow decides whether a request from clientAddr to endpoint is admitted.
// Endpoints without a configured rule are always admitted. On any storage
// failure the limiter fails open: brute-force deterrence is not worth taking
// the rest of the system down with Redis.
//
// The count-then-insert sequence is not atomic: concurrent requests from the
// same client can each observe a count below the threshold and all be
// admitted, exceeding the limit by up to the degree of concurrency. Accepted
// as deterrence, not a hard quota.
func (l *Limiter) Allow(ctx context.Context, endpoint, clientAddr string) bool {
	rule, ok := l.rules[endpoint]
	if !ok {
		return true
	}

	key := entryKey(endpoint, clientAddr)
	now := time.Now()
	windowStart := now.Add(-rule.Window)

	count, err := l.redis.ZCount(ctx, key,
		strconv.FormatInt(windowStart.UnixNano(), 10),
		"("+strconv.FormatInt(now.UnixNano(), 10),
	).Result()
	if err != nil {
		log.Printf("[RATELIMIT] store unavailable, admitting %s %s: %v", endpoint, clientAddr, err)
		return true
	}

	if count >= int64(rule.MaxRequests) {
		return false
	}

	if err := l.redis.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	}).Err(); err != nil {
		log.Printf("[RATELIMIT] failed to record request for %s %s: %v", endpoint, clientAddr, err)
		return true
	}

	l.purge(ctx, key, now)

	return true
}

// purge drops entries past the retention horizon. Best-effort only; it never
// affects the admission decision.
func (l *Limiter) purge(ctx context.Context, key string, now time.Time) {
	horizon := now.Add(-l.retention)
	if err := l.redis.ZRemRangeByScore(ctx, key, "0",
		strconv.FormatInt(horizon.UnixNano(), 10)).Err(); err != nil {
		log.Printf("[RATELIMIT] purge failed for %s: %v", key, err)
		return
	}
	if err := l.redis.Expire(ctx, key, l.retention).Err(); err != nil {
		log.Printf("[RATELIMIT] expire failed for %s: %v", key, err)
	}
}

func entryKey(endpoint, clientAddr string) string {
	return "rl:" + endpoint + ":" + clientAddr
}
