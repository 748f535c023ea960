// Package session keeps the ephemeral per-user conversation state.
package session

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/helpdesk-labs/support-bot/internal/domain"
)

// Store maps user ids to conversation sessions.
type Store interface {
	Get(userID int64) (domain.Session, bool)
	Put(session domain.Session)
	Delete(userID int64)
}

// LRUStore is a bounded Store whose entries expire after ttl of inactivity.
// Contents are lost on restart.
type LRUStore struct {
	cache *expirable.LRU[int64, domain.Session]
	now   func() time.Time
}

// NewLRUStore builds a store holding at most capacity sessions.
func NewLRUStore(capacity int, ttl time.Duration) *LRUStore {
	if capacity <= 0 {
		capacity = 10000
	}
	return &LRUStore{
		cache: expirable.NewLRU[int64, domain.Session](capacity, nil, ttl),
		now:   time.Now,
	}
}

func (s *LRUStore) Get(userID int64) (domain.Session, bool) {
	return s.cache.Get(userID)
}

func (s *LRUStore) Put(session domain.Session) {
	session.UpdatedAt = s.now()
	s.cache.Add(session.UserID, session)
}

func (s *LRUStore) Delete(userID int64) {
	s.cache.Remove(userID)
}

// Len returns the number of live sessions.
func (s *LRUStore) Len() int {
	return s.cache.Len()
}
