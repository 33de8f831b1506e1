package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()

	var order []string
	d.Subscribe(EventTicketAssigned, func(ctx context.Context, e Event) error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe(EventTicketAssigned, func(ctx context.Context, e Event) error {
		order = append(order, "second")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketAssigned, TicketID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatcherContinuesPastHandlerFailure(t *testing.T) {
	d := NewInMemoryDispatcher()

	var reached bool
	d.Subscribe(EventTicketStatusChanged, func(ctx context.Context, e Event) error {
		return errors.New("handler broke")
	})
	d.Subscribe(EventTicketStatusChanged, func(ctx context.Context, e Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketStatusChanged})
	require.NoError(t, err)
	assert.True(t, reached, "a failing handler must not starve the rest")
}

func TestDispatcherIgnoresUnhandledType(t *testing.T) {
	d := NewInMemoryDispatcher()
	err := d.Publish(context.Background(), Event{Type: EventType("unknown")})
	assert.NoError(t, err)
}
