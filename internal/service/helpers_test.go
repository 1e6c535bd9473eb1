package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/achievement"
	"github.com/phrazzld/scry-quest/internal/mocks"
	"github.com/phrazzld/scry-quest/internal/service"
	"github.com/stretchr/testify/require"
)

// prefixSource never swaps, so each daily draw is the catalog prefix.
type prefixSource struct{}

func (prefixSource) Intn(n int) int { return n - 1 }

// morning is 09:00 UTC, outside the night-owl window.
var morning = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type harness struct {
	uow       *mocks.MemoryUnitOfWork
	evaluator *achievement.Evaluator
	opts      service.Options
	now       time.Time
}

func newHarness(t *testing.T, catalog []domain.ChallengeTemplate) *harness {
	t.Helper()
	h := &harness{
		uow: mocks.NewMemoryUnitOfWork(),
		now: morning,
	}
	h.evaluator = achievement.NewEvaluator(h.uow.Achievements, nil, nil, nil)
	h.opts = service.Options{
		Catalog: catalog,
		Source:  prefixSource{},
		Now:     func() time.Time { return h.now },
	}
	return h
}

// completedSet stores today's set for userID with every challenge completed.
func (h *harness) completedSet(t *testing.T, userID uuid.UUID, templates ...domain.ChallengeTemplate) {
	t.Helper()
	set := make([]domain.Challenge, 0, len(templates))
	for _, tmpl := range templates {
		c := domain.NewChallenge(tmpl, h.now)
		c.Progress = c.Target
		c.IsCompleted = true
		set = append(set, c)
	}
	require.NoError(t, h.uow.Challenges.Save(context.Background(), userID, set))
}

func intPtr(v int) *int { return &v }
