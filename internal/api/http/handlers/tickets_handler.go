package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-core/internal/api/dto"
	"github.com/spec-kit/helpdesk-core/internal/auth"
	"github.com/spec-kit/helpdesk-core/internal/repository"
	"github.com/spec-kit/helpdesk-core/internal/service"
	apperrors "github.com/spec-kit/helpdesk-core/pkg/errorutil"
)

// TicketsHandler manages single-ticket staff endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// GetTicket GET /department/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	ticket, err := h.tickets.GetForStaff(c.UserContext(), principal.Staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Success: true, Data: dto.FromTicket(ticket)})
}

// UpdateTicket PATCH /department/tickets/:id. Carries the caller's
// last-seen version; a stale version yields CONCURRENT_MODIFICATION.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Version <= 0 {
		return apperrors.NewValidationError("version required", nil)
	}

	patch := repository.TicketPatch{
		Subject:     req.Subject,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	ticket, err := h.tickets.UpdateWithVersion(c.UserContext(), principal.Staff, c.Params("id"), req.Version, patch)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Success: true, Message: "ticket updated", Data: dto.FromTicket(ticket)})
}
