package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen           TicketStatus = "OPEN"
	TicketStatusAssigned       TicketStatus = "ASSIGNED"
	TicketStatusInProgress     TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingForUser TicketStatus = "WAITING_FOR_USER"
	TicketStatusResolved       TicketStatus = "RESOLVED"
	TicketStatusClosed         TicketStatus = "CLOSED"
	TicketStatusReopened       TicketStatus = "REOPENED"
)

// ValidTicketStatus reports whether s is a known status value.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusAssigned, TicketStatusInProgress,
		TicketStatusWaitingForUser, TicketStatusResolved, TicketStatusClosed,
		TicketStatusReopened:
		return true
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Ticket is the aggregate for support requests. Version is the optimistic
// concurrency counter, incremented by every conditional update. AssigneeName
// caches the assignee's display name so list views avoid a join.
type Ticket struct {
	ID           string
	ExternalKey  string
	RequesterID  string
	DepartmentID string
	AssigneeID   *string
	AssigneeName *string
	Subject      string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
}
