package domain

import "time"

// NotificationType enumerates stakeholder notification kinds.
type NotificationType string

const (
	NotificationTicketAssigned      NotificationType = "TICKET_ASSIGNED"
	NotificationTicketStatusChanged NotificationType = "TICKET_STATUS_CHANGED"
)

// Notification is a durable per-user message. Live delivery is best-effort;
// offline stakeholders read these rows through a pull endpoint instead.
type Notification struct {
	ID          string
	UserID      string
	Type        NotificationType
	Title       string
	Message     string
	SenderID    *string
	RelatedKind string
	RelatedID   string
	Read        bool
	CreatedAt   time.Time
}
