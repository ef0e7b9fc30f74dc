package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-synth/internal/api/http/handlers"
	"github.com/spec-kit/ticket-synth/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Bot            *handlers.BotHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *ClientRateLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Post("/auth/token", cfg.Auth.Token)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/profiles", cfg.Tickets.Profiles)
	protected.Get("/batches/:id", cfg.Tickets.GetBatch)

	generate := protected.Group("", auth.RequireScope(auth.ScopeGenerate), cfg.RateLimiter.Handle)
	generate.Post("/tickets/generate", cfg.Tickets.Generate)
	generate.Post("/bot/generate", cfg.Bot.Generate)
}
