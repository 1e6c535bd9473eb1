package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChallengeService(t *testing.T, h *harness) service.ChallengeService {
	t.Helper()
	svc, err := service.NewChallengeService(h.uow, h.evaluator, h.opts, nil)
	require.NoError(t, err)
	return svc
}

func TestGetDailyChallengesDrawsOncePerDay(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	svc := newChallengeService(t, h)
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.GetDailyChallenges(ctx, userID, "")
	require.NoError(t, err)
	require.Len(t, first, 3)

	stored, err := h.uow.Challenges.Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first, stored)

	h.now = h.now.Add(2 * time.Hour)
	again, err := svc.GetDailyChallenges(ctx, userID, "")
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestGetDailyChallengesRejectsUnknownZone(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	svc := newChallengeService(t, h)

	_, err := svc.GetDailyChallenges(context.Background(), uuid.New(), "Nowhere/Special")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestGetDailyChallengesStoreFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	svc := newChallengeService(t, h)
	h.uow.Challenges.LoadErr = errors.New("down")

	_, err := svc.GetDailyChallenges(context.Background(), uuid.New(), "")
	assert.Error(t, err)
}

func TestClaimRewardCreditsOnce(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	svc := newChallengeService(t, h)
	userID := uuid.New()
	ctx := context.Background()

	cards10 := domain.DefaultChallengeCatalog[0]
	h.completedSet(t, userID, cards10)

	res, err := svc.ClaimReward(ctx, userID, service.ClaimInput{ChallengeID: cards10.ID})
	require.NoError(t, err)
	assert.True(t, res.Claimed)
	assert.True(t, res.Challenge.IsClaimed)
	assert.Equal(t, cards10.CoinReward, res.CoinsAwarded)
	assert.Equal(t, cards10.XPReward, res.XPAwarded)
	assert.Equal(t, cards10.CoinReward, res.Progress.Coins)
	assert.Equal(t, cards10.XPReward, res.Progress.ExperiencePoints)

	again, err := svc.ClaimReward(ctx, userID, service.ClaimInput{ChallengeID: cards10.ID})
	require.NoError(t, err)
	assert.False(t, again.Claimed)
	assert.Zero(t, again.CoinsAwarded)

	p, err := h.uow.Progress.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, cards10.CoinReward, p.Coins)

	set, err := h.uow.Challenges.Load(ctx, userID)
	require.NoError(t, err)
	assert.True(t, set[0].IsClaimed)
}

func TestClaimRewardIncompleteIsNoOp(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	svc := newChallengeService(t, h)
	userID := uuid.New()
	ctx := context.Background()

	set, err := svc.GetDailyChallenges(ctx, userID, "")
	require.NoError(t, err)

	res, err := svc.ClaimReward(ctx, userID, service.ClaimInput{ChallengeID: set[0].ID})
	require.NoError(t, err)
	assert.False(t, res.Claimed)
	assert.False(t, res.Challenge.IsCompleted)
	assert.Nil(t, res.Progress)
	assert.Empty(t, res.UnlockedAchievements)
}

func TestClaimRewardUnknownChallenge(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	svc := newChallengeService(t, h)

	_, err := svc.ClaimReward(context.Background(), uuid.New(), service.ClaimInput{ChallengeID: "minutes-30"})
	assert.ErrorIs(t, err, service.ErrChallengeNotFound)

	_, err = svc.ClaimReward(context.Background(), uuid.New(), service.ClaimInput{})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestClaimRewardLastClaimUnlocksChallengeChampion(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	svc := newChallengeService(t, h)
	userID := uuid.New()
	ctx := context.Background()

	catalog := domain.DefaultChallengeCatalog
	h.completedSet(t, userID, catalog[0], catalog[3], catalog[5])

	for _, id := range []string{catalog[0].ID, catalog[3].ID} {
		res, err := svc.ClaimReward(ctx, userID, service.ClaimInput{ChallengeID: id})
		require.NoError(t, err)
		assert.NotContains(t, res.UnlockedAchievements, "challenge-champion")
	}

	res, err := svc.ClaimReward(ctx, userID, service.ClaimInput{ChallengeID: catalog[5].ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"challenge-champion"}, res.UnlockedAchievements)

	p, err := h.uow.Progress.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, catalog[0].CoinReward+catalog[3].CoinReward+catalog[5].CoinReward, p.Coins)
}

func TestClaimRewardRollsBackOnSaveFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	svc := newChallengeService(t, h)
	userID := uuid.New()
	ctx := context.Background()

	h.completedSet(t, userID, domain.DefaultChallengeCatalog[0])
	h.uow.Challenges.SaveErr = errors.New("disk full")

	_, err := svc.ClaimReward(ctx, userID, service.ClaimInput{ChallengeID: domain.DefaultChallengeCatalog[0].ID})
	require.Error(t, err)

	h.uow.Challenges.SaveErr = nil
	set, err := h.uow.Challenges.Load(ctx, userID)
	require.NoError(t, err)
	assert.False(t, set[0].IsClaimed)

	_, err = h.uow.Progress.Get(ctx, userID)
	assert.Error(t, err)
}
