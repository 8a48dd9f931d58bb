package memory

import (
	"context"
	"sync"

	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
)

// FareStateStore is the process-local baseline used when Redis is not configured.
type FareStateStore struct {
	mu     sync.RWMutex
	states map[string]models.FareState
}

func NewFareStateStore() *FareStateStore {
	return &FareStateStore{states: make(map[string]models.FareState)}
}

func (s *FareStateStore) Load(_ context.Context, key string) (models.FareState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[key]
	if !ok {
		return models.FareState{}, derr.ErrStateNotFound
	}
	return state, nil
}

func (s *FareStateStore) Save(_ context.Context, key string, state models.FareState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[key] = state
	return nil
}
