package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/store"
)

// MemoryUnitOfWork is a store.UnitOfWork over the Memory* stores.
//
// Transactions run concurrently. Writes are buffered and applied to the base
// stores on commit; reads outside a transaction see committed data only.
// GetForUpdate, Create and Update lock the user's progress row until the
// transaction ends, the way SELECT ... FOR UPDATE and row writes do under
// READ COMMITTED.
type MemoryUnitOfWork struct {
	Progress     *MemoryProgressStore
	Challenges   *MemoryChallengeStore
	Achievements *MemoryAchievementStore

	mu   sync.Mutex
	rows map[uuid.UUID]*rowLock
}

type rowLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemoryUnitOfWork creates a MemoryUnitOfWork over empty stores.
func NewMemoryUnitOfWork() *MemoryUnitOfWork {
	return &MemoryUnitOfWork{
		Progress:     NewMemoryProgressStore(),
		Challenges:   NewMemoryChallengeStore(),
		Achievements: NewMemoryAchievementStore(),
		rows:         make(map[uuid.UUID]*rowLock),
	}
}

// Stores implements store.UnitOfWork.
func (u *MemoryUnitOfWork) Stores() store.Stores {
	return store.Stores{Progress: u.Progress, Challenges: u.Challenges, Achievements: u.Achievements}
}

// Do implements store.UnitOfWork. Buffered writes are discarded when fn
// returns an error or panics.
func (u *MemoryUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx store.Stores) error) error {
	tx := &memoryTx{
		uow:          u,
		held:         make(map[uuid.UUID]func()),
		progress:     make(map[uuid.UUID]*domain.UserProgress),
		challenges:   make(map[uuid.UUID][]domain.Challenge),
		achievements: make(map[uuid.UUID]map[string]struct{}),
	}
	defer tx.release()

	if err := fn(ctx, store.Stores{
		Progress:     &txProgressStore{tx: tx},
		Challenges:   &txChallengeStore{tx: tx},
		Achievements: &txAchievementStore{tx: tx},
	}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// lockRow blocks until the user's row is free and returns its release func.
func (u *MemoryUnitOfWork) lockRow(userID uuid.UUID) func() {
	u.mu.Lock()
	l, ok := u.rows[userID]
	if !ok {
		l = &rowLock{}
		u.rows[userID] = l
	}
	l.refs++
	u.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		u.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(u.rows, userID)
		}
		u.mu.Unlock()
	}
}

type memoryTx struct {
	uow  *MemoryUnitOfWork
	mu   sync.Mutex
	held map[uuid.UUID]func()

	progress     map[uuid.UUID]*domain.UserProgress
	challenges   map[uuid.UUID][]domain.Challenge
	achievements map[uuid.UUID]map[string]struct{}
}

// lock takes the user's row lock once per transaction.
func (t *memoryTx) lock(userID uuid.UUID) {
	t.mu.Lock()
	_, ok := t.held[userID]
	t.mu.Unlock()
	if ok {
		return
	}
	unlock := t.uow.lockRow(userID)
	t.mu.Lock()
	t.held[userID] = unlock
	t.mu.Unlock()
}

func (t *memoryTx) commit() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range t.progress {
		t.uow.Progress.Put(p)
	}
	for userID, set := range t.challenges {
		t.uow.Challenges.put(userID, set)
	}
	for userID, ids := range t.achievements {
		list := make([]string, 0, len(ids))
		for id := range ids {
			list = append(list, id)
		}
		t.uow.Achievements.add(userID, list)
	}
}

func (t *memoryTx) release() {
	t.mu.Lock()
	held := t.held
	t.held = nil
	t.mu.Unlock()

	for _, unlock := range held {
		unlock()
	}
}

func (t *memoryTx) bufferedProgress(userID uuid.UUID) (*domain.UserProgress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.progress[userID]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

type txProgressStore struct {
	tx *memoryTx
}

func (s *txProgressStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	if p, ok := s.tx.bufferedProgress(userID); ok {
		return p, nil
	}
	return s.tx.uow.Progress.Get(ctx, userID)
}

func (s *txProgressStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	s.tx.lock(userID)
	return s.Get(ctx, userID)
}

func (s *txProgressStore) Create(ctx context.Context, progress *domain.UserProgress) error {
	createErr, _ := s.tx.uow.Progress.failures()
	if createErr != nil {
		return createErr
	}
	if err := progress.Validate(); err != nil {
		return store.NewStoreError("user_progress", "create", "invalid progress", fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	// A concurrent insert of the same key waits for the other transaction.
	s.tx.lock(progress.UserID)
	if _, ok := s.tx.bufferedProgress(progress.UserID); ok || s.tx.uow.Progress.exists(progress.UserID) {
		return store.ErrProgressExists
	}

	s.tx.mu.Lock()
	s.tx.progress[progress.UserID] = progress.Clone()
	s.tx.mu.Unlock()
	return nil
}

func (s *txProgressStore) Update(ctx context.Context, progress *domain.UserProgress) error {
	_, updateErr := s.tx.uow.Progress.failures()
	if updateErr != nil {
		return updateErr
	}
	if err := progress.Validate(); err != nil {
		return store.NewStoreError("user_progress", "update", "invalid progress", fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	s.tx.lock(progress.UserID)
	if _, ok := s.tx.bufferedProgress(progress.UserID); !ok && !s.tx.uow.Progress.exists(progress.UserID) {
		return store.ErrProgressNotFound
	}

	s.tx.mu.Lock()
	s.tx.progress[progress.UserID] = progress.Clone()
	s.tx.mu.Unlock()
	return nil
}

func (s *txProgressStore) WithTx(*sqlx.Tx) store.UserProgressStore {
	return s
}

type txChallengeStore struct {
	tx *memoryTx
}

func (s *txChallengeStore) Load(ctx context.Context, userID uuid.UUID) ([]domain.Challenge, error) {
	s.tx.mu.Lock()
	set, ok := s.tx.challenges[userID]
	s.tx.mu.Unlock()
	if ok {
		return cloneChallenges(set), nil
	}
	return s.tx.uow.Challenges.Load(ctx, userID)
}

func (s *txChallengeStore) Save(ctx context.Context, userID uuid.UUID, challenges []domain.Challenge) error {
	if err := s.tx.uow.Challenges.saveFailure(); err != nil {
		return err
	}
	for _, c := range challenges {
		if err := c.Validate(); err != nil {
			return store.NewStoreError("challenge", "save", "invalid challenge", fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
		}
	}

	s.tx.mu.Lock()
	s.tx.challenges[userID] = cloneChallenges(challenges)
	s.tx.mu.Unlock()
	return nil
}

func (s *txChallengeStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.tx.uow.Challenges.DeleteBefore(ctx, cutoff)
}

func (s *txChallengeStore) WithTx(*sqlx.Tx) store.ChallengeStore {
	return s
}

type txAchievementStore struct {
	tx *memoryTx
}

func (s *txAchievementStore) GetUnlocked(ctx context.Context, userID uuid.UUID) ([]string, error) {
	ids, err := s.tx.uow.Achievements.GetUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.tx.mu.Lock()
	defer s.tx.mu.Unlock()
	for id := range s.tx.achievements[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *txAchievementStore) SaveUnlocked(ctx context.Context, userID uuid.UUID, ids []string) ([]string, error) {
	if err := s.tx.uow.Achievements.saveFailure(); err != nil {
		return nil, err
	}

	s.tx.mu.Lock()
	defer s.tx.mu.Unlock()

	pending, ok := s.tx.achievements[userID]
	if !ok {
		pending = make(map[string]struct{}, len(ids))
		s.tx.achievements[userID] = pending
	}
	inserted := []string{}
	for _, id := range ids {
		if _, ok := pending[id]; ok || s.tx.uow.Achievements.has(userID, id) {
			continue
		}
		pending[id] = struct{}{}
		inserted = append(inserted, id)
	}
	return inserted, nil
}

func (s *txAchievementStore) WithTx(*sqlx.Tx) store.AchievementStore {
	return s
}

var (
	_ store.UserProgressStore = (*txProgressStore)(nil)
	_ store.ChallengeStore    = (*txChallengeStore)(nil)
	_ store.AchievementStore  = (*txAchievementStore)(nil)
)
