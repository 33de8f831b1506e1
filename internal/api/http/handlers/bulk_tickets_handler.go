package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-core/internal/api/dto"
	"github.com/spec-kit/helpdesk-core/internal/auth"
	"github.com/spec-kit/helpdesk-core/internal/service"
	apperrors "github.com/spec-kit/helpdesk-core/pkg/errorutil"
)

// BulkTicketsHandler exposes the department head's bulk mutations.
type BulkTicketsHandler struct {
	bulk *service.BulkService
}

// NewBulkTicketsHandler constructs the handler.
func NewBulkTicketsHandler(bulk *service.BulkService) *BulkTicketsHandler {
	return &BulkTicketsHandler{bulk: bulk}
}

// BulkAssign POST /department/tickets/bulk-assign.
func (h *BulkTicketsHandler) BulkAssign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.BulkAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.TicketIDs) == 0 || req.AssignedTo == "" {
		return apperrors.NewValidationError("ticketIds and assignedTo required", nil)
	}

	result, err := h.bulk.BulkAssign(c.UserContext(), principal.Staff, req.TicketIDs, req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Message: result.Message,
		Data:    dto.BulkResultData(result),
	})
}

// BulkUpdateStatus POST /department/tickets/bulk-status.
func (h *BulkTicketsHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.BulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.TicketIDs) == 0 || req.Status == "" {
		return apperrors.NewValidationError("ticketIds and status required", nil)
	}

	result, err := h.bulk.BulkUpdateStatus(c.UserContext(), principal.Staff, req.TicketIDs, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{
		Success: true,
		Message: result.Message,
		Data:    dto.BulkResultData(result),
	})
}
