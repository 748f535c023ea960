package repository

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const updateKeyPrefix = "support-bot:update:"

// UpdateLogRepository remembers which platform update ids are being or have
// been processed, so a redelivered webhook does not run twice.
type UpdateLogRepository interface {
	// Acquire returns true when updateID has not been seen within the TTL.
	Acquire(ctx context.Context, updateID int) (bool, error)
	// Release forgets updateID so a redelivery is processed again.
	Release(ctx context.Context, updateID int) error
}

type redisUpdateLog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisUpdateLog stores update ids in Redis with SETNX.
func NewRedisUpdateLog(client *redis.Client, ttl time.Duration) UpdateLogRepository {
	return &redisUpdateLog{client: client, ttl: ttl}
}

func (r *redisUpdateLog) Acquire(ctx context.Context, updateID int) (bool, error) {
	return r.client.SetNX(ctx, updateKey(updateID), time.Now().Unix(), r.ttl).Result()
}

func (r *redisUpdateLog) Release(ctx context.Context, updateID int) error {
	return r.client.Del(ctx, updateKey(updateID)).Err()
}

func updateKey(updateID int) string {
	return updateKeyPrefix + strconv.Itoa(updateID)
}

type memoryUpdateLog struct {
	mu   sync.Mutex
	seen *expirable.LRU[int, struct{}]
}

// NewMemoryUpdateLog keeps at most capacity update ids for ttl.
func NewMemoryUpdateLog(capacity int, ttl time.Duration) UpdateLogRepository {
	return &memoryUpdateLog{seen: expirable.NewLRU[int, struct{}](capacity, nil, ttl)}
}

func (m *memoryUpdateLog) Acquire(_ context.Context, updateID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen.Contains(updateID) {
		return false, nil
	}
	m.seen.Add(updateID, struct{}{})
	return true, nil
}

func (m *memoryUpdateLog) Release(_ context.Context, updateID int) error {
	m.seen.Remove(updateID)
	return nil
}
