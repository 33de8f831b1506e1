package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// UpdateTicketRequest is the body of PATCH /department/tickets/:id. Version
// is the caller's last-observed version counter; the update fails with 409
// if another writer got there first.
type UpdateTicketRequest struct {
	Version     int64                  `json:"version"`
	Subject     *string                `json:"subject,omitempty"`
	Description *string                `json:"description,omitempty"`
	Status      *domain.TicketStatus   `json:"status,omitempty"`
	Priority    *domain.TicketPriority `json:"priority,omitempty"`
}

// TicketResponse is the wire representation of a ticket.
type TicketResponse struct {
	ID           string                `json:"id"`
	ExternalKey  string                `json:"externalKey"`
	RequesterID  string                `json:"requesterId"`
	DepartmentID string                `json:"departmentId"`
	AssignedTo   *string               `json:"assignedTo,omitempty"`
	AssigneeName *string               `json:"assigneeName,omitempty"`
	Subject      string                `json:"subject"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Version      int64                 `json:"version"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	ResolvedAt   *time.Time            `json:"resolvedAt,omitempty"`
	ClosedAt     *time.Time            `json:"closedAt,omitempty"`
}

// FromTicket maps a domain ticket to its response shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           ticket.ID,
		ExternalKey:  ticket.ExternalKey,
		RequesterID:  ticket.RequesterID,
		DepartmentID: ticket.DepartmentID,
		AssignedTo:   ticket.AssigneeID,
		AssigneeName: ticket.AssigneeName,
		Subject:      ticket.Subject,
		Description:  ticket.Description,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		Version:      ticket.Version,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
		ResolvedAt:   ticket.ResolvedAt,
		ClosedAt:     ticket.ClosedAt,
	}
}
