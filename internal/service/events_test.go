package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/events"
	"github.com/phrazzld/scry-quest/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []*events.Event
}

func (r *eventRecorder) HandleEvent(_ context.Context, e *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *eventRecorder) find(t events.Type) *events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Type == t {
			return e
		}
	}
	return nil
}

func withRecorder(h *harness) *eventRecorder {
	rec := &eventRecorder{}
	emitter := events.NewInMemoryEmitter(nil)
	emitter.RegisterHandler(rec)
	h.opts.Events = emitter
	return rec
}

func TestCompleteSessionPublishesEvents(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	rec := withRecorder(h)
	svc := newProgressionService(t, h)
	userID := uuid.New()

	_, err := svc.CompleteSession(context.Background(), userID, service.SessionInput{
		TotalCards:      10,
		DurationSeconds: 300,
	})
	require.NoError(t, err)

	assert.Equal(t, []events.Type{events.TypeSessionCompleted, events.TypeAchievementsUnlocked}, rec.types())

	var completed events.SessionCompleted
	require.NoError(t, rec.find(events.TypeSessionCompleted).UnmarshalPayload(&completed))
	assert.Equal(t, 22, completed.XPEarned)
	assert.Equal(t, 1, completed.Streak)

	var unlocked events.AchievementsUnlocked
	e := rec.find(events.TypeAchievementsUnlocked)
	require.NoError(t, e.UnmarshalPayload(&unlocked))
	assert.Equal(t, []string{"deck-builder", "first-steps"}, unlocked.IDs)
	assert.Equal(t, userID, e.UserID)
	assert.Equal(t, morning, e.OccurredAt)
}

func TestClaimRewardPublishesLevelUp(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	rec := withRecorder(h)
	svc := newChallengeService(t, h)
	userID := uuid.New()

	p, err := domain.NewUserProgress(userID, h.now)
	require.NoError(t, err)
	p.ExperiencePoints = 95
	h.uow.Progress.Put(p)

	cards10 := domain.DefaultChallengeCatalog[0]
	h.completedSet(t, userID, cards10)

	res, err := svc.ClaimReward(context.Background(), userID, service.ClaimInput{ChallengeID: cards10.ID})
	require.NoError(t, err)
	require.True(t, res.LeveledUp)

	e := rec.find(events.TypeLevelUp)
	require.NotNil(t, e)
	var up events.LevelUp
	require.NoError(t, e.UnmarshalPayload(&up))
	assert.Equal(t, events.LevelUp{From: 1, To: 2}, up)

	var claimed events.ChallengeClaimed
	require.NoError(t, rec.find(events.TypeChallengeClaimed).UnmarshalPayload(&claimed))
	assert.Equal(t, events.ChallengeClaimed{ChallengeID: "cards-10", Coins: 20, XP: 15}, claimed)
}

func TestHandlerFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	emitter := events.NewInMemoryEmitter(nil)
	emitter.RegisterHandler(events.HandlerFunc(func(context.Context, *events.Event) error {
		return errors.New("audit sink down")
	}))
	h.opts.Events = emitter
	svc := newProgressionService(t, h)

	res, err := svc.CompleteSession(context.Background(), uuid.New(), service.SessionInput{TotalCards: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Progress.TotalCardsReviewed)
}

func TestClaimNoOpPublishesNothing(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	rec := withRecorder(h)
	svc := newChallengeService(t, h)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.GetDailyChallenges(ctx, userID, "")
	require.NoError(t, err)

	res, err := svc.ClaimReward(ctx, userID, service.ClaimInput{ChallengeID: "cards-10"})
	require.NoError(t, err)
	assert.False(t, res.Claimed)
	assert.Empty(t, rec.types())
}
