package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/events"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, e *events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return h.err
}

func TestNewEvent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	e, err := events.New(events.TypeLevelUp, userID, events.LevelUp{From: 1, To: 2}, at)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, events.TypeLevelUp, e.Type)
	assert.Equal(t, userID, e.UserID)
	assert.Equal(t, at, e.OccurredAt)
	assert.JSONEq(t, `{"from":1,"to":2}`, string(e.Payload))

	var payload events.LevelUp
	require.NoError(t, e.UnmarshalPayload(&payload))
	assert.Equal(t, 2, payload.To)
}

func TestNewEventRejectsUnencodablePayload(t *testing.T) {
	t.Parallel()

	_, err := events.New(events.TypeLevelUp, uuid.New(), make(chan int), time.Now())
	assert.Error(t, err)
}

func TestInMemoryEmitterDeliversToAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEmitter(nil)
	failing := &recordingHandler{err: errors.New("first failed")}
	ok := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(ok)

	e, err := events.New(events.TypeChallengeClaimed, uuid.New(),
		events.ChallengeClaimed{ChallengeID: "cards-10", Coins: 20, XP: 15}, time.Now())
	require.NoError(t, err)

	err = emitter.Emit(context.Background(), e)
	assert.EqualError(t, err, "first failed")
	assert.Len(t, failing.events, 1)
	require.Len(t, ok.events, 1)
	assert.Same(t, e, ok.events[0])
}

func TestInMemoryEmitterWithoutHandlers(t *testing.T) {
	t.Parallel()

	e, err := events.New(events.TypeSessionCompleted, uuid.New(), events.SessionCompleted{}, time.Now())
	require.NoError(t, err)
	assert.NoError(t, events.NewInMemoryEmitter(nil).Emit(context.Background(), e))
	assert.NoError(t, events.NopEmitter{}.Emit(context.Background(), e))
}

func TestLogHandler(t *testing.T) {
	t.Parallel()

	log, buf := logger.GetTestLogger(t)
	userID := uuid.New()
	e, err := events.New(events.TypeAchievementsUnlocked, userID,
		events.AchievementsUnlocked{IDs: []string{"night-owl"}}, time.Now())
	require.NoError(t, err)

	require.NoError(t, events.NewLogHandler(log).HandleEvent(context.Background(), e))

	logger.AssertLogContains(t, buf, "progression event")
	logger.AssertLogContains(t, buf, "achievements.unlocked")
	logger.AssertLogContains(t, buf, userID.String())
	logger.AssertLogContains(t, buf, "night-owl")
}
