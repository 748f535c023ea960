package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRunsEveryHandler(t *testing.T) {
	d := NewSyncDispatcher(nil)
	var calls []string
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketRated, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t"})

	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishRecoversPanickingHandler(t *testing.T) {
	d := NewSyncDispatcher(nil)
	ran := false
	d.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		panic("nil map")
	})
	d.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		ran = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketAssigned})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil map")
	assert.True(t, ran)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewSyncDispatcher(nil)
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketRated}))
}
