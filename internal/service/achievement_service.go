package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/achievement"
	"github.com/phrazzld/scry-quest/internal/domain/challenge"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/store"
)

// AchievementStatus is a catalog tier with the user's unlock flag.
type AchievementStatus struct {
	domain.AchievementTier
	Unlocked bool `json:"unlocked"`
}

// EvaluateInput carries the client-side metrics for an explicit evaluation.
type EvaluateInput struct {
	Timezone         string `json:"timezone,omitempty"          validate:"omitempty,timezone"`
	DecorationsCount *int   `json:"decorations_count,omitempty" validate:"omitempty,gte=0"`
}

// AchievementService exposes the achievement catalog and explicit evaluation.
type AchievementService interface {
	// List returns every tier in catalog order with the user's unlock flag.
	List(ctx context.Context, userID uuid.UUID) ([]AchievementStatus, error)

	// Evaluate tests the user's stored totals, today's challenge claims and the
	// given client metrics against the catalog and returns newly unlocked ids.
	Evaluate(ctx context.Context, userID uuid.UUID, in EvaluateInput) ([]string, error)
}

type achievementServiceImpl struct {
	stores    store.Stores
	evaluator *achievement.Evaluator
	opts      Options
	logger    *slog.Logger
}

// NewAchievementService creates an AchievementService.
// It returns an error if any of the required dependencies are nil.
func NewAchievementService(
	stores store.Stores,
	evaluator *achievement.Evaluator,
	opts Options,
	logger *slog.Logger,
) (AchievementService, error) {
	if stores.Progress == nil || stores.Challenges == nil {
		return nil, errors.New("progress and challenge stores cannot be nil")
	}
	if evaluator == nil {
		return nil, errors.New("achievement evaluator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &achievementServiceImpl{
		stores:    stores,
		evaluator: evaluator,
		opts:      opts.withDefaults(),
		logger:    logger.With(slog.String("component", "achievement_service")),
	}, nil
}

// List implements AchievementService.
func (s *achievementServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]AchievementStatus, error) {
	unlocked, err := s.evaluator.Unlocked(ctx, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load achievements",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("achievement", "list", "failed to load achievements", err)
	}

	tiers := s.evaluator.Tiers()
	out := make([]AchievementStatus, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, AchievementStatus{AchievementTier: tier, Unlocked: unlocked.Has(tier.ID)})
	}
	return out, nil
}

// Evaluate implements AchievementService.
func (s *achievementServiceImpl) Evaluate(
	ctx context.Context,
	userID uuid.UUID,
	in EvaluateInput,
) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if err := validateInput(in); err != nil {
		return nil, err
	}
	now := s.opts.localNow(in.Timezone)

	progress, err := s.stores.Progress.Get(ctx, userID)
	if errors.Is(err, store.ErrProgressNotFound) {
		progress, err = domain.NewUserProgress(userID, now)
	}
	if err != nil {
		log.Error("failed to load progress", slog.String("error", err.Error()))
		return nil, NewServiceError("achievement", "evaluate", "failed to load progress", err)
	}

	set, err := s.stores.Challenges.Load(ctx, userID)
	if err != nil {
		log.Error("failed to load challenges", slog.String("error", err.Error()))
		return nil, NewServiceError("achievement", "evaluate", "failed to load challenges", err)
	}
	// Claims from an earlier day do not count towards today's set.
	if challenge.NewTracker(s.opts.Catalog, s.opts.Source, set).ShouldReset(now) {
		set = nil
	}

	unlocked := s.evaluator.EvaluateAndUnlock(ctx, userID, buildMetrics(progress, set, now, in.DecorationsCount))
	publishUnlocked(ctx, s.opts, log, userID, now, unlocked)
	return unlocked, nil
}

var _ AchievementService = (*achievementServiceImpl)(nil)
