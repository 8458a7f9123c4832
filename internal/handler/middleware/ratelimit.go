package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/simonesiega/studyWS/internal/apperr"
	"github.com/simonesiega/studyWS/pkg/ratelimit"
)

// RateLimit gates configured endpoints before they reach the auth service.
// The limiter itself fails open on storage faults, so this middleware only
// ever rejects genuinely over-limit clients.
func RateLimit(limiter *ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow(c.Context(), c.Path(), ClientAddress(c)) {
			return apperr.RateLimited("too many requests, retry later")
		}
		return c.Next()
	}
}

// ClientAddress resolves the client address, preferring the first hop of
// X-Forwarded-For over the socket address. Spoofable by design; the service
// is expected to sit behind a trusted reverse proxy.
func ClientAddress(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first := strings.SplitN(forwarded, ",", 2)[0]
		if addr := strings.TrimSpace(first); addr != "" {
			return addr
		}
	}
	return c.IP()
}
