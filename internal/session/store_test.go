package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-labs/support-bot/internal/domain"
)

func TestPutGetDelete(t *testing.T) {
	store := NewLRUStore(10, time.Hour)

	_, ok := store.Get(1)
	assert.False(t, ok)

	store.Put(domain.Session{UserID: 1, State: domain.SessionAwaitingResponse, TicketID: "t-1"})
	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, domain.SessionAwaitingResponse, got.State)
	assert.Equal(t, "t-1", got.TicketID)
	assert.False(t, got.UpdatedAt.IsZero())

	store.Delete(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
}

func TestCapacityEvictsOldest(t *testing.T) {
	store := NewLRUStore(2, time.Hour)
	store.Put(domain.Session{UserID: 1})
	store.Put(domain.Session{UserID: 2})
	store.Put(domain.Session{UserID: 3})

	assert.Equal(t, 2, store.Len())
	_, ok := store.Get(1)
	assert.False(t, ok)
}

func TestEntriesExpire(t *testing.T) {
	store := NewLRUStore(10, 20*time.Millisecond)
	store.Put(domain.Session{UserID: 1})

	assert.Eventually(t, func() bool {
		_, ok := store.Get(1)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
