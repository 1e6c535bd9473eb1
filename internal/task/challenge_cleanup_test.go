package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/mocks"
	"github.com/phrazzld/scry-quest/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingChallengeStore struct {
	store.ChallengeStore
	err error
}

func (s failingChallengeStore) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, s.err
}

func TestNewChallengeCleanupTaskValidation(t *testing.T) {
	t.Parallel()

	_, err := NewChallengeCleanupTask(nil, 7, nil)
	assert.Error(t, err)

	_, err = NewChallengeCleanupTask(mocks.NewMemoryChallengeStore(), 0, nil)
	assert.Error(t, err)

	task, err := NewChallengeCleanupTask(mocks.NewMemoryChallengeStore(), 7, nil)
	require.NoError(t, err)
	assert.Equal(t, ChallengeCleanupTaskName, task.Name())
}

func TestChallengeCleanupTaskRemovesStaleSets(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 3, 15, 0, 0, time.UTC)
	challenges := mocks.NewMemoryChallengeStore()
	ctx := context.Background()

	stale, fresh := uuid.New(), uuid.New()
	require.NoError(t, challenges.Save(ctx, stale, []domain.Challenge{
		domain.NewChallenge(domain.DefaultChallengeCatalog[0], now.AddDate(0, 0, -8)),
	}))
	require.NoError(t, challenges.Save(ctx, fresh, []domain.Challenge{
		domain.NewChallenge(domain.DefaultChallengeCatalog[0], now.AddDate(0, 0, -1)),
	}))

	task, err := NewChallengeCleanupTask(challenges, 7, nil)
	require.NoError(t, err)
	task.now = func() time.Time { return now }

	require.NoError(t, task.Run(ctx))

	got, err := challenges.Load(ctx, stale)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = challenges.Load(ctx, fresh)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestChallengeCleanupTaskPropagatesStoreError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	task, err := NewChallengeCleanupTask(failingChallengeStore{err: boom}, 7, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, task.Run(context.Background()), boom)
}
