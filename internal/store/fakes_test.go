package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-quest/internal/domain"
)

type txRecordingProgressStore struct{ tx *sqlx.Tx }

func (s *txRecordingProgressStore) Get(context.Context, uuid.UUID) (*domain.UserProgress, error) {
	return nil, ErrProgressNotFound
}

func (s *txRecordingProgressStore) GetForUpdate(context.Context, uuid.UUID) (*domain.UserProgress, error) {
	return nil, ErrProgressNotFound
}

func (s *txRecordingProgressStore) Create(context.Context, *domain.UserProgress) error { return nil }

func (s *txRecordingProgressStore) Update(context.Context, *domain.UserProgress) error { return nil }

func (s *txRecordingProgressStore) WithTx(tx *sqlx.Tx) UserProgressStore {
	return &txRecordingProgressStore{tx: tx}
}

type txRecordingChallengeStore struct{ tx *sqlx.Tx }

func (s *txRecordingChallengeStore) Load(context.Context, uuid.UUID) ([]domain.Challenge, error) {
	return nil, nil
}

func (s *txRecordingChallengeStore) Save(context.Context, uuid.UUID, []domain.Challenge) error {
	return nil
}

func (s *txRecordingChallengeStore) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *txRecordingChallengeStore) WithTx(tx *sqlx.Tx) ChallengeStore {
	return &txRecordingChallengeStore{tx: tx}
}

type txRecordingAchievementStore struct{ tx *sqlx.Tx }

func (s *txRecordingAchievementStore) GetUnlocked(context.Context, uuid.UUID) ([]string, error) {
	return nil, nil
}

func (s *txRecordingAchievementStore) SaveUnlocked(context.Context, uuid.UUID, []string) ([]string, error) {
	return nil, nil
}

func (s *txRecordingAchievementStore) WithTx(tx *sqlx.Tx) AchievementStore {
	return &txRecordingAchievementStore{tx: tx}
}
