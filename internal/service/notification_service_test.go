package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-labs/support-bot/internal/domain"
)

func TestLifecycleIsRecordedInHistory(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	ticket, _ := h.tickets.Create(ctx, alice)
	_, err := h.tickets.Claim(ctx, ticket.ID, mod)
	require.NoError(t, err)
	_, err = h.tickets.RequestFinish(ctx, ticket.ID, alice.ID)
	require.NoError(t, err)
	_, err = h.tickets.Rate(ctx, ticket.ID, 4)
	require.NoError(t, err)

	history, err := h.history.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)

	changes := make([]domain.TicketChangeType, 0, len(history))
	for _, entry := range history {
		changes = append(changes, entry.ChangeType)
	}
	assert.Equal(t, []domain.TicketChangeType{
		domain.ChangeTypeCreated,
		domain.ChangeTypeAssignee,
		domain.ChangeTypeStatus,
		domain.ChangeTypeStatus,
		domain.ChangeTypeRated,
		domain.ChangeTypeStatus,
	}, changes)

	assigned := history[1]
	require.NotNil(t, assigned.ActorID)
	assert.Equal(t, mod.ID, *assigned.ActorID)
	assert.Equal(t, "mod", assigned.NewValue["moderator_username"])

	closed := history[5]
	assert.Equal(t, "awaiting_rating", closed.OldValue["status"])
	assert.Equal(t, "closed", closed.NewValue["status"])
	assert.Equal(t, 4, history[4].NewValue["score"])
}

func TestRejectedTransitionsAreNotRecorded(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	ticket, _ := h.tickets.Create(ctx, alice)
	_, _ = h.tickets.Claim(ctx, ticket.ID, mod)
	_, _ = h.tickets.Claim(ctx, ticket.ID, mod2)

	history, err := h.history.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}
