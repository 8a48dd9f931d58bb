package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

// FareStateStore keeps the whole baseline in a single value so both legs change together.
type FareStateStore struct {
	redis *redis.Client
}

func NewFareStateStore(redisClient *redis.Client) *FareStateStore {
	return &FareStateStore{redis: redisClient}
}

func (s *FareStateStore) Load(ctx context.Context, key string) (models.FareState, error) {
	data, err := s.redis.Get(ctx, stateKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.FareState{}, derr.ErrStateNotFound
		}
		return models.FareState{}, fmt.Errorf("redis get fare state: %w", err)
	}

	var state models.FareState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return models.FareState{}, fmt.Errorf("unmarshal fare state: %w", err)
	}

	return state, nil
}

func (s *FareStateStore) Save(ctx context.Context, key string, state models.FareState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal fare state: %w", err)
	}

	if err := s.redis.Set(ctx, stateKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set fare state: %w", err)
	}

	return nil
}

func stateKey(key string) string {
	return fmt.Sprintf("fares:state:%s", key)
}
