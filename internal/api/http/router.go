package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-core/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-core/internal/auth"
	"github.com/spec-kit/helpdesk-core/internal/resilience"
)

// Endpoint names tracked by the health monitor.
const (
	EndpointBulkAssign = "department.tickets.bulk_assign"
	EndpointBulkStatus = "department.tickets.bulk_status"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Staff          *handlers.StaffHandler
	Tickets        *handlers.TicketsHandler
	Bulk           *handlers.BulkTicketsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	Monitor        *resilience.HealthMonitor
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/staff/login", cfg.Staff.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Staff.ChangePassword)

	dept := app.Group("/department/tickets", cfg.AuthMiddleware.Handle)
	dept.Get("/:id", cfg.Tickets.GetTicket)
	dept.Patch("/:id", cfg.Tickets.UpdateTicket)
	dept.Post("/bulk-assign",
		auth.RequireDepartmentHead(),
		resilience.Guard(cfg.Monitor, EndpointBulkAssign),
		cfg.Bulk.BulkAssign,
	)
	dept.Post("/bulk-status",
		auth.RequireDepartmentHead(),
		resilience.Guard(cfg.Monitor, EndpointBulkStatus),
		cfg.Bulk.BulkUpdateStatus,
	)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
}
