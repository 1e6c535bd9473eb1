//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/achievement"
	"github.com/phrazzld/scry-quest/internal/platform/postgres"
	"github.com/phrazzld/scry-quest/internal/service"
	"github.com/phrazzld/scry-quest/internal/store"
	"github.com/phrazzld/scry-quest/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationUserProgressRoundTrip(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		ctx := context.Background()
		s := postgres.NewPostgresUserProgressStore(tx, nil)

		now := time.Now().UTC().Truncate(time.Microsecond)
		p, err := domain.NewUserProgress(uuid.New(), now)
		require.NoError(t, err)
		require.NoError(t, s.Create(ctx, p))

		assert.ErrorIs(t, s.Create(ctx, p), store.ErrProgressExists)

		p.ExperiencePoints, p.Coins, p.Streak = 42, 7, 3
		require.NoError(t, s.Update(ctx, p))

		got, err := s.GetForUpdate(ctx, p.UserID)
		require.NoError(t, err)
		assert.Equal(t, 42, got.ExperiencePoints)
		assert.Equal(t, 7, got.Coins)
		assert.Equal(t, 3, got.Streak)
		assert.True(t, now.Equal(got.LastActivityAt))

		_, err = s.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrProgressNotFound)
	})
}

func TestIntegrationChallengeSetReplaceAndCleanup(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		ctx := context.Background()
		s := postgres.NewPostgresChallengeStore(tx, nil, nil)
		userID := uuid.New()

		old := time.Now().UTC().AddDate(0, 0, -30).Truncate(time.Microsecond)
		first := []domain.Challenge{
			domain.NewChallenge(domain.DefaultChallengeCatalog[0], old),
			domain.NewChallenge(domain.DefaultChallengeCatalog[3], old),
		}
		require.NoError(t, s.Save(ctx, userID, first))

		got, err := s.Load(ctx, userID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, first[0].ID, got[0].ID)
		assert.Equal(t, first[1].ID, got[1].ID)

		removed, err := s.DeleteBefore(ctx, old.Add(time.Second))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, removed, int64(2))

		got, err = s.Load(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestIntegrationAchievementsAreIdempotent(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		ctx := context.Background()
		s := postgres.NewPostgresAchievementStore(tx, nil)
		userID := uuid.New()

		inserted, err := s.SaveUnlocked(ctx, userID, []string{"streak-starter", "deck-builder"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"deck-builder", "streak-starter"}, inserted)

		inserted, err = s.SaveUnlocked(ctx, userID, []string{"deck-builder", "first-steps"})
		require.NoError(t, err)
		assert.Equal(t, []string{"first-steps"}, inserted)

		ids, err := s.GetUnlocked(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, []string{"deck-builder", "first-steps", "streak-starter"}, ids)
	})
}

// TestIntegrationConcurrentClaimsCreditOnce commits real transactions, so it
// removes the user's rows afterwards instead of rolling back.
func TestIntegrationConcurrentClaimsCreditOnce(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()
	userID := uuid.New()
	t.Cleanup(func() {
		for _, table := range []string{"daily_challenges", "user_achievements", "user_progress"} {
			_, _ = db.ExecContext(context.Background(), "DELETE FROM "+table+" WHERE user_id = $1", userID)
		}
	})

	stores := store.Stores{
		Progress:     postgres.NewPostgresUserProgressStore(db, nil),
		Challenges:   postgres.NewPostgresChallengeStore(db, nil, nil),
		Achievements: postgres.NewPostgresAchievementStore(db, nil),
	}
	uow := store.NewSQLUnitOfWork(db, stores)
	evaluator := achievement.NewEvaluator(stores.Achievements, nil, nil, nil)
	svc, err := service.NewChallengeService(uow, evaluator, service.Options{}, nil)
	require.NoError(t, err)

	cards10 := domain.DefaultChallengeCatalog[0]
	c := domain.NewChallenge(cards10, time.Now().UTC())
	c.Progress = c.Target
	c.IsCompleted = true
	require.NoError(t, stores.Challenges.Save(ctx, userID, []domain.Challenge{c}))

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := svc.ClaimReward(ctx, userID, service.ClaimInput{ChallengeID: cards10.ID})
			if !assert.NoError(t, err) {
				return
			}
			if res.Claimed {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, claimed)

	p, err := stores.Progress.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, cards10.CoinReward, p.Coins)

	set, err := stores.Challenges.Load(ctx, userID)
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.True(t, set[0].IsClaimed)
}
