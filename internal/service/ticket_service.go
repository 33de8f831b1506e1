package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-core/pkg/errorutil"
)

// TicketService covers the single-ticket paths that ride alongside the bulk
// pipeline: reads and version-guarded updates.
type TicketService struct {
	tickets repository.TicketRepository
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository) *TicketService {
	return &TicketService{tickets: tickets}
}

// GetForStaff fetches a ticket, enforcing department scope for non-admins.
func (s *TicketService) GetForStaff(ctx context.Context, actor *domain.StaffMember, ticketID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !staffCanAccess(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// UpdateWithVersion applies a patch only if the caller's observed version is
// still current. A concurrent writer surfaces as CONCURRENT_MODIFICATION;
// the caller re-reads and retries.
func (s *TicketService) UpdateWithVersion(ctx context.Context, actor *domain.StaffMember, ticketID string, expectedVersion int64, patch repository.TicketPatch) (*domain.Ticket, error) {
	ticket, err := s.GetForStaff(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed && patch.Status == nil {
		return nil, apperrors.NewConflict("closed tickets are immutable", map[string]any{"ticket_id": ticketID})
	}
	if patch.Status != nil && !domain.ValidTicketStatus(*patch.Status) {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": *patch.Status})
	}

	updated, err := s.tickets.UpdateWithVersion(ctx, ticketID, expectedVersion, patch)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return updated, nil
}

func staffCanAccess(actor *domain.StaffMember, ticket *domain.Ticket) bool {
	if actor == nil {
		return false
	}
	if actor.Role == domain.StaffRoleAdmin {
		return true
	}
	return actor.Department() == ticket.DepartmentID
}
