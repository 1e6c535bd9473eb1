package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/store"
)

// MemoryProgressStore is an in-memory store.UserProgressStore.
// Setting GetErr, CreateErr or UpdateErr makes the matching method fail.
type MemoryProgressStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*domain.UserProgress

	GetErr    error
	CreateErr error
	UpdateErr error
}

// NewMemoryProgressStore creates an empty MemoryProgressStore.
func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{records: make(map[uuid.UUID]*domain.UserProgress)}
}

// Get implements store.UserProgressStore.
func (s *MemoryProgressStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GetErr != nil {
		return nil, s.GetErr
	}
	p, ok := s.records[userID]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	return p.Clone(), nil
}

// GetForUpdate implements store.UserProgressStore.
func (s *MemoryProgressStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	return s.Get(ctx, userID)
}

// Create implements store.UserProgressStore.
func (s *MemoryProgressStore) Create(ctx context.Context, progress *domain.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}
	if err := progress.Validate(); err != nil {
		return store.NewStoreError("user_progress", "create", "invalid progress", fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}
	if _, ok := s.records[progress.UserID]; ok {
		return store.ErrProgressExists
	}
	s.records[progress.UserID] = progress.Clone()
	return nil
}

// Update implements store.UserProgressStore.
func (s *MemoryProgressStore) Update(ctx context.Context, progress *domain.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if err := progress.Validate(); err != nil {
		return store.NewStoreError("user_progress", "update", "invalid progress", fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}
	if _, ok := s.records[progress.UserID]; !ok {
		return store.ErrProgressNotFound
	}
	s.records[progress.UserID] = progress.Clone()
	return nil
}

// WithTx implements store.UserProgressStore. The memory store ignores tx.
func (s *MemoryProgressStore) WithTx(*sqlx.Tx) store.UserProgressStore {
	return s
}

// Put stores progress directly, bypassing validation.
func (s *MemoryProgressStore) Put(progress *domain.UserProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[progress.UserID] = progress.Clone()
}

func (s *MemoryProgressStore) exists(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[userID]
	return ok
}

func (s *MemoryProgressStore) failures() (create, update error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CreateErr, s.UpdateErr
}

// MemoryChallengeStore is an in-memory store.ChallengeStore.
type MemoryChallengeStore struct {
	mu   sync.Mutex
	sets map[uuid.UUID][]domain.Challenge

	LoadErr error
	SaveErr error
}

// NewMemoryChallengeStore creates an empty MemoryChallengeStore.
func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{sets: make(map[uuid.UUID][]domain.Challenge)}
}

// Load implements store.ChallengeStore.
func (s *MemoryChallengeStore) Load(ctx context.Context, userID uuid.UUID) ([]domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return cloneChallenges(s.sets[userID]), nil
}

// Save implements store.ChallengeStore.
func (s *MemoryChallengeStore) Save(ctx context.Context, userID uuid.UUID, challenges []domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}
	for _, c := range challenges {
		if err := c.Validate(); err != nil {
			return store.NewStoreError("challenge", "save", "invalid challenge", fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
		}
	}
	s.sets[userID] = cloneChallenges(challenges)
	return nil
}

// DeleteBefore implements store.ChallengeStore.
func (s *MemoryChallengeStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for userID, set := range s.sets {
		kept := set[:0]
		for _, c := range set {
			if c.LastUpdated.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) == 0 {
			delete(s.sets, userID)
			continue
		}
		s.sets[userID] = kept
	}
	return removed, nil
}

// WithTx implements store.ChallengeStore. The memory store ignores tx.
func (s *MemoryChallengeStore) WithTx(*sqlx.Tx) store.ChallengeStore {
	return s
}

func (s *MemoryChallengeStore) saveFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.SaveErr
}

func (s *MemoryChallengeStore) put(userID uuid.UUID, set []domain.Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[userID] = cloneChallenges(set)
}

// MemoryAchievementStore is an in-memory store.AchievementStore.
type MemoryAchievementStore struct {
	mu       sync.Mutex
	unlocked map[uuid.UUID]map[string]struct{}
	saves    int

	GetErr  error
	SaveErr error
}

// NewMemoryAchievementStore creates an empty MemoryAchievementStore.
func NewMemoryAchievementStore() *MemoryAchievementStore {
	return &MemoryAchievementStore{unlocked: make(map[uuid.UUID]map[string]struct{})}
}

// GetUnlocked implements store.AchievementStore.
func (s *MemoryAchievementStore) GetUnlocked(ctx context.Context, userID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GetErr != nil {
		return nil, s.GetErr
	}
	ids := make([]string, 0, len(s.unlocked[userID]))
	for id := range s.unlocked[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// SaveUnlocked implements store.AchievementStore. It returns the ids that
// were not stored before the call.
func (s *MemoryAchievementStore) SaveUnlocked(ctx context.Context, userID uuid.UUID, ids []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return nil, s.SaveErr
	}
	if len(ids) == 0 {
		return []string{}, nil
	}
	s.saves++
	return s.insert(userID, ids), nil
}

// insert adds ids and returns the ones that were new. Callers hold s.mu.
func (s *MemoryAchievementStore) insert(userID uuid.UUID, ids []string) []string {
	set, ok := s.unlocked[userID]
	if !ok {
		set = make(map[string]struct{}, len(ids))
		s.unlocked[userID] = set
	}
	inserted := []string{}
	for _, id := range ids {
		if _, ok := set[id]; ok {
			continue
		}
		set[id] = struct{}{}
		inserted = append(inserted, id)
	}
	return inserted
}

// Saves returns the number of non-empty SaveUnlocked calls.
func (s *MemoryAchievementStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// WithTx implements store.AchievementStore. The memory store ignores tx.
func (s *MemoryAchievementStore) WithTx(*sqlx.Tx) store.AchievementStore {
	return s
}

func (s *MemoryAchievementStore) saveFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.SaveErr
}

func (s *MemoryAchievementStore) has(userID uuid.UUID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.unlocked[userID][id]
	return ok
}

func (s *MemoryAchievementStore) add(userID uuid.UUID, ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(userID, ids)
}

func cloneChallenges(in []domain.Challenge) []domain.Challenge {
	out := make([]domain.Challenge, len(in))
	copy(out, in)
	return out
}

var (
	_ store.UserProgressStore = (*MemoryProgressStore)(nil)
	_ store.ChallengeStore    = (*MemoryChallengeStore)(nil)
	_ store.AchievementStore  = (*MemoryAchievementStore)(nil)
	_ store.UnitOfWork        = (*MemoryUnitOfWork)(nil)
)
