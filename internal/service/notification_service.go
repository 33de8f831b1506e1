package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/events"
	"github.com/spec-kit/helpdesk-core/internal/push"
	"github.com/spec-kit/helpdesk-core/internal/repository"
)

const pushNotification = "notification"

// NotificationService turns domain events into stakeholder notifications:
// a durable row first, then a best-effort live push to the stakeholder's
// connection.
type NotificationService struct {
	notifications repository.NotificationRepository
	pusher        push.Pusher
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, pusher push.Pusher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		pusher:        pusher,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to the events the bulk pipeline emits.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for ticket_assigned", zap.String("event_id", event.ID))
		return nil
	}
	actorID := event.ActorID
	return n.NotifyStakeholder(ctx, payload.RequesterID, &domain.Notification{
		UserID:      payload.RequesterID,
		Type:        domain.NotificationTicketAssigned,
		Title:       "Your ticket was assigned",
		Message:     fmt.Sprintf("Ticket %s (%s) is now handled by %s", payload.TicketKey, payload.TicketSubject, payload.AssigneeName),
		SenderID:    &actorID,
		RelatedKind: "ticket",
		RelatedID:   event.TicketID,
	})
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for ticket_status_changed", zap.String("event_id", event.ID))
		return nil
	}
	actorID := event.ActorID
	return n.NotifyStakeholder(ctx, payload.RequesterID, &domain.Notification{
		UserID:      payload.RequesterID,
		Type:        domain.NotificationTicketStatusChanged,
		Title:       "Ticket status updated",
		Message:     fmt.Sprintf("Ticket %s (%s) moved to %s", payload.TicketKey, payload.TicketSubject, payload.NewStatus),
		SenderID:    &actorID,
		RelatedKind: "ticket",
		RelatedID:   event.TicketID,
	})
}

// NotifyStakeholder persists the notification, then tries a live push. An
// offline stakeholder reads the row later through the pull endpoint, so a
// skipped push is not an error.
func (n *NotificationService) NotifyStakeholder(ctx context.Context, userID string, notification *domain.Notification) error {
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("persist notification failed",
			zap.String("user_id", userID),
			zap.String("type", string(notification.Type)),
			zap.Error(err),
		)
		return err
	}

	delivered := n.pusher.TryDeliver(ctx, userID, push.Event{
		Type:      pushNotification,
		Timestamp: time.Now(),
		Payload:   notification,
	})
	if !delivered {
		n.logger.Debug("stakeholder offline, live push skipped", zap.String("user_id", userID))
	}
	return nil
}
