package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-labs/support-bot/internal/api/http/handlers"
	"github.com/helpdesk-labs/support-bot/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Webhook        *handlers.WebhookHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/webhook", cfg.Webhook.Receive)

	app.Post("/admin/login", cfg.Admin.Login)

	app.Get("/set_webhook", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Admin.SetWebhook)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Post("/webhook", cfg.Admin.SetWebhook)
	admin.Get("/tickets", cfg.Admin.ListTickets)
	admin.Get("/tickets/:id", cfg.Admin.GetTicket)
	admin.Get("/metrics", cfg.Admin.Metrics)
}
