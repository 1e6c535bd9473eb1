package challenge

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
)

// memoryStore keeps challenge sets in a map for round-trip tests.
type memoryStore struct {
	sets map[uuid.UUID][]domain.Challenge
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sets: make(map[uuid.UUID][]domain.Challenge)}
}

func (s *memoryStore) Load(_ context.Context, userID uuid.UUID) ([]domain.Challenge, error) {
	return append([]domain.Challenge{}, s.sets[userID]...), nil
}

func (s *memoryStore) Save(_ context.Context, userID uuid.UUID, challenges []domain.Challenge) error {
	s.sets[userID] = append([]domain.Challenge(nil), challenges...)
	return nil
}

var _ Store = (*memoryStore)(nil)
