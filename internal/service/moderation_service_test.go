package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimAlreadyTakenRepliesInChat(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	ticket, _ := h.tickets.Create(ctx, alice)
	require.NoError(t, h.moderation.Claim(ctx, mod, moderatorChat, ticket.ID))

	require.NoError(t, h.moderation.Claim(ctx, mod2, moderatorChat, ticket.ID))
	assert.Equal(t, "Ticket already taken by @mod.", h.gw.Last().Text)
	assert.Equal(t, moderatorChat, h.gw.Last().ChatID)
}

func TestClaimNotifiesBothSides(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	ticket, _ := h.tickets.Create(ctx, alice)

	require.NoError(t, h.moderation.Claim(ctx, mod, moderatorChat, ticket.ID))
	require.Len(t, h.gw.Sent, 2)
	assert.Equal(t, "You took the ticket from alice. Write your answer here.", h.gw.Sent[0].Text)
	assert.Equal(t, moderatorChat, h.gw.Sent[0].ChatID)
	assert.Equal(t, alice.ID, h.gw.Sent[1].ChatID)
}

func TestActiveTicketsOnlyInModeratorChat(t *testing.T) {
	h := newHarness(t, true)

	require.NoError(t, h.moderation.ActiveTickets(context.Background(), alice.ID))
	assert.Equal(t, textModeratorsOnly, h.gw.Last().Text)
}

func TestActiveTicketsEmpty(t *testing.T) {
	h := newHarness(t, true)

	require.NoError(t, h.moderation.ActiveTickets(context.Background(), moderatorChat))
	assert.Equal(t, textNoTickets, h.gw.Last().Text)
}

func TestActiveTicketsListing(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	first, _ := h.tickets.Create(ctx, alice)
	_, _ = h.tickets.Create(ctx, bob)
	_, _ = h.tickets.Claim(ctx, first.ID, mod)

	require.NoError(t, h.moderation.ActiveTickets(ctx, moderatorChat))
	assert.Equal(t,
		"Active tickets:\n- alice (in_progress): Moderator: @mod\n- Bob (open): No moderator",
		h.gw.Last().Text)
}
