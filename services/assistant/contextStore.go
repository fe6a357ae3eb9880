// File: services/assistant/contextStore.go
package assistant

import (
	"context"
	"encoding/json"
	"time"

	"aeromed/models"

	"github.com/go-redis/redis/v8"
)

const sessionStatePrefix = "chat:state:"

// StateStore persists conversation state between turns, keyed by session ID.
type StateStore interface {
	Get(ctx context.Context, sessionID string) (*models.ConversationState, error)
	Set(ctx context.Context, sessionID string, state *models.ConversationState) error
	Clear(ctx context.Context, sessionID string) error
}

type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl}
}

// Get returns the stored state, or a zero state for unknown sessions.
func (s *RedisStateStore) Get(ctx context.Context, sessionID string) (*models.ConversationState, error) {
	key := sessionStatePrefix + sessionID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return &models.ConversationState{}, nil
	}
	if err != nil {
		return nil, err
	}
	var state models.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RedisStateStore) Set(ctx context.Context, sessionID string, state *models.ConversationState) error {
	key := sessionStatePrefix + sessionID
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

func (s *RedisStateStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionStatePrefix+sessionID).Err()
}
