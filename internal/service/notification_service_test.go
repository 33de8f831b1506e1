package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/events"
)

type memNotificationRepo struct {
	created   []domain.Notification
	createErr error
}

func (r *memNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, *n)
	return nil
}

func (r *memNotificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range r.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	return nil
}

func TestTicketAssignedEventPersistsAndPushes(t *testing.T) {
	repo := &memNotificationRepo{}
	pusher := &memPusher{delivered: true}
	svc := NewNotificationService(repo, pusher, zap.NewNop())

	dispatcher := events.NewInMemoryDispatcher()
	svc.RegisterHandlers(dispatcher)

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:       "evt-1",
		Type:     events.EventTicketAssigned,
		TicketID: "t1",
		ActorID:  "staff-head",
		Payload: events.TicketAssignedPayload{
			TicketKey:     "HD-101",
			TicketSubject: "Printer jam",
			RequesterID:   "user-1",
			AssigneeID:    "staff-member",
			AssigneeName:  "Riley Ortiz",
		},
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	n := repo.created[0]
	assert.Equal(t, "user-1", n.UserID)
	assert.Equal(t, domain.NotificationTicketAssigned, n.Type)
	assert.Contains(t, n.Message, "HD-101")
	assert.Contains(t, n.Message, "Riley Ortiz")
	assert.Equal(t, "t1", n.RelatedID)
	require.NotNil(t, n.SenderID)
	assert.Equal(t, "staff-head", *n.SenderID)

	require.Len(t, pusher.pushes, 1)
	assert.Equal(t, "user-1", pusher.pushes[0].UserID)
	assert.Equal(t, pushNotification, pusher.pushes[0].Event.Type)
}

func TestTicketStatusChangedEventPersists(t *testing.T) {
	repo := &memNotificationRepo{}
	pusher := &memPusher{}
	svc := NewNotificationService(repo, pusher, zap.NewNop())

	dispatcher := events.NewInMemoryDispatcher()
	svc.RegisterHandlers(dispatcher)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: "t2",
		ActorID:  "staff-head",
		Payload: events.TicketStatusChangedPayload{
			TicketKey:     "HD-102",
			TicketSubject: "VPN flaky",
			RequesterID:   "user-2",
			NewStatus:     domain.TicketStatusResolved,
		},
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, domain.NotificationTicketStatusChanged, repo.created[0].Type)
	assert.Contains(t, repo.created[0].Message, "RESOLVED")
}

func TestNotifyStakeholderToleratesOfflineUser(t *testing.T) {
	repo := &memNotificationRepo{}
	pusher := &memPusher{delivered: false}
	svc := NewNotificationService(repo, pusher, zap.NewNop())

	err := svc.NotifyStakeholder(context.Background(), "user-1", &domain.Notification{
		UserID: "user-1",
		Type:   domain.NotificationTicketAssigned,
	})
	require.NoError(t, err, "a missed live push is not a failure")
	assert.Len(t, repo.created, 1)
}

func TestNotifyStakeholderSurfacesPersistFailure(t *testing.T) {
	repo := &memNotificationRepo{createErr: errors.New("db down")}
	pusher := &memPusher{delivered: true}
	svc := NewNotificationService(repo, pusher, zap.NewNop())

	err := svc.NotifyStakeholder(context.Background(), "user-1", &domain.Notification{UserID: "user-1"})
	require.Error(t, err)
	assert.Empty(t, pusher.pushes, "no live push without the durable row")
}

func TestMalformedPayloadIsDropped(t *testing.T) {
	repo := &memNotificationRepo{}
	svc := NewNotificationService(repo, &memPusher{}, zap.NewNop())

	dispatcher := events.NewInMemoryDispatcher()
	svc.RegisterHandlers(dispatcher)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventTicketAssigned,
		Payload: "not a struct",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.created)
}
