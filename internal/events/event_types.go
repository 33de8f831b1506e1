package events

import (
	"time"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted by the bulk mutation pipeline.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	TicketID    string      `json:"ticket_id"`
	OperationID string      `json:"operation_id,omitempty"`
	ActorID     string      `json:"actor_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// TicketAssignedPayload carries what a stakeholder needs to know about an
// assignment: who the ticket went to and who should be told.
type TicketAssignedPayload struct {
	TicketKey     string `json:"ticket_key"`
	TicketSubject string `json:"ticket_subject"`
	RequesterID   string `json:"requester_id"`
	AssigneeID    string `json:"assignee_id"`
	AssigneeName  string `json:"assignee_name"`
}

// TicketStatusChangedPayload carries a bulk status transition.
type TicketStatusChangedPayload struct {
	TicketKey     string              `json:"ticket_key"`
	TicketSubject string              `json:"ticket_subject"`
	RequesterID   string              `json:"requester_id"`
	NewStatus     domain.TicketStatus `json:"new_status"`
}
