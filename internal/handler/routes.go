package handler

import (
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(
	app *fiber.App,
	authHandler *AuthHandler,
	healthHandler *HealthHandler,
	authMiddleware fiber.Handler,
	rateLimitMiddleware fiber.Handler,
) {
	// Health checks (public, unlimited)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	// Auth routes; the limiter runs before the orchestrator is invoked
	auth := app.Group("/auth", rateLimitMiddleware)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authMiddleware, authHandler.Logout)
}
