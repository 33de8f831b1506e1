package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// NotificationResponse is the wire representation of a stored notification.
type NotificationResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	SenderID    *string   `json:"senderId,omitempty"`
	RelatedKind string    `json:"relatedKind"`
	RelatedID   string    `json:"relatedId"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FromNotification maps a domain notification to its response shape.
func FromNotification(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		SenderID:    n.SenderID,
		RelatedKind: n.RelatedKind,
		RelatedID:   n.RelatedID,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt,
	}
}
