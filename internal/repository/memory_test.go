package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-labs/support-bot/internal/domain"
)

func TestMemoryTicketUpdate(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	ticket := &domain.Ticket{ID: "t1", UserID: 1, Username: "alice", Status: domain.TicketStatusOpen}
	require.NoError(t, repo.Create(ctx, ticket))
	assert.ErrorIs(t, repo.Create(ctx, ticket), ErrDuplicate)

	updated, err := repo.Update(ctx, "t1", func(_ context.Context, t *domain.Ticket) error {
		t.AssignModerator(domain.Participant{ID: 10, Username: "mod"})
		t.Status = domain.TicketStatusInProgress
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

	stored, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), *stored.ModeratorID)
}

func TestMemoryTicketUpdateFailureLeavesTicket(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.Ticket{ID: "t1", Status: domain.TicketStatusOpen}))

	boom := errors.New("boom")
	_, err := repo.Update(ctx, "t1", func(_ context.Context, t *domain.Ticket) error {
		t.Status = domain.TicketStatusClosed
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, _ := repo.GetByID(ctx, "t1")
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)

	_, err = repo.Update(ctx, "missing", func(context.Context, *domain.Ticket) error { return nil })
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryTicketReturnsCopies(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.Ticket{ID: "t1", Status: domain.TicketStatusOpen}))

	got, _ := repo.GetByID(ctx, "t1")
	got.Status = domain.TicketStatusClosed

	again, _ := repo.GetByID(ctx, "t1")
	assert.Equal(t, domain.TicketStatusOpen, again.Status)
}

func TestMemoryTicketFilter(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	moderator := int64(10)
	require.NoError(t, repo.Create(ctx, &domain.Ticket{ID: "a", UserID: 1, Status: domain.TicketStatusOpen}))
	require.NoError(t, repo.Create(ctx, &domain.Ticket{ID: "b", UserID: 2, Status: domain.TicketStatusInProgress, ModeratorID: &moderator}))
	require.NoError(t, repo.Create(ctx, &domain.Ticket{ID: "c", UserID: 1, Status: domain.TicketStatusClosed, ModeratorID: &moderator}))

	active, err := repo.ListWithFilter(ctx, TicketFilter{Statuses: domain.ActiveTicketStatuses})
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].ID)
	assert.Equal(t, "b", active[1].ID)

	mine, err := repo.ListWithFilter(ctx, TicketFilter{ModeratorID: &moderator, NewestFirst: true})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "c", mine[0].ID)

	userID := int64(1)
	page, err := repo.ListWithFilter(ctx, TicketFilter{UserID: &userID, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c", page[0].ID)
}

func TestMemoryRatings(t *testing.T) {
	repo := NewMemoryRatingRepository()
	ctx := context.Background()

	_, err := repo.GetByTicket(ctx, "t1")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	require.NoError(t, repo.Create(ctx, &domain.Rating{TicketID: "t1", Score: 5}))
	assert.ErrorIs(t, repo.Create(ctx, &domain.Rating{TicketID: "t1", Score: 1}), ErrDuplicate)

	rating, err := repo.GetByTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 5, rating.Score)
}

func TestMemoryUpdateLog(t *testing.T) {
	log := NewMemoryUpdateLog(10, time.Hour)
	ctx := context.Background()

	ok, err := log.Acquire(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = log.Acquire(ctx, 1)
	assert.False(t, ok)

	require.NoError(t, log.Release(ctx, 1))
	ok, _ = log.Acquire(ctx, 1)
	assert.True(t, ok)
}

func TestRedisUpdateLogSurfacesConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	_, err := NewRedisUpdateLog(client, time.Minute).Acquire(context.Background(), 1)
	assert.Error(t, err)
}
