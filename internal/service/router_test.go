package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeratorMessageWithoutActiveTicket(t *testing.T) {
	h := newHarness(t, true)

	require.NoError(t, h.router.RouteFromModerator(context.Background(), moderatorMessage(mod, 1, "hello?")))
	assert.Equal(t, textNoActiveTickets, h.gw.Last().Text)
	assert.Equal(t, moderatorChat, h.gw.Last().ChatID)
}

func TestModeratorMessageIsScreened(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	ticket, _ := h.tickets.Create(ctx, alice)
	_, _ = h.tickets.Claim(ctx, ticket.ID, mod)

	require.NoError(t, h.router.RouteFromModerator(ctx, moderatorMessage(mod, 2, "try a vpn")))
	assert.Equal(t, textContentRejected, h.gw.Last().Text)
	assert.Empty(t, h.gw.SentTo(alice.ID))
}

func TestModeratorReplyGoesToNewestClaim(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	first, _ := h.tickets.Create(ctx, alice)
	second, _ := h.tickets.Create(ctx, bob)
	_, _ = h.tickets.Claim(ctx, first.ID, mod)
	_, _ = h.tickets.Claim(ctx, second.ID, mod)

	require.NoError(t, h.router.RouteFromModerator(ctx, moderatorMessage(mod, 3, "hi")))
	require.Len(t, h.gw.SentTo(bob.ID), 2)
	assert.Empty(t, h.gw.SentTo(alice.ID))
}

func TestRouteFromUserUnknownTicket(t *testing.T) {
	h := newHarness(t, true)

	require.NoError(t, h.router.RouteFromUser(context.Background(), userMessage(alice, 1, "hi"), "missing"))
	assert.Equal(t, textTicketNotFound, h.gw.Last().Text)
	assert.Empty(t, h.gw.Forwarded)
}

func TestScreenAllowsCleanText(t *testing.T) {
	h := newHarness(t, true)

	ok, err := h.router.Screen(context.Background(), userMessage(alice, 1, "all good"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, h.gw.Sent)
}
