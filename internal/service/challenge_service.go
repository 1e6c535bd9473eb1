package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/achievement"
	"github.com/phrazzld/scry-quest/internal/events"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/store"
)

// ClaimInput identifies a claim request.
type ClaimInput struct {
	ChallengeID string `json:"challenge_id" validate:"required"`
	Timezone    string `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

// ClaimResult is the outcome of ClaimReward. Claimed is false when the
// challenge was not completed or had already been claimed; nothing is
// credited in that case.
type ClaimResult struct {
	Challenge            domain.Challenge     `json:"challenge"`
	Claimed              bool                 `json:"claimed"`
	CoinsAwarded         int                  `json:"coins_awarded"`
	XPAwarded            int                  `json:"xp_awarded"`
	LeveledUp            bool                 `json:"leveled_up"`
	Progress             *domain.UserProgress `json:"progress,omitempty"`
	UnlockedAchievements []string             `json:"unlocked_achievements"`
}

// ChallengeService manages a user's daily challenge set.
type ChallengeService interface {
	// GetDailyChallenges returns today's set in the given zone, drawing and
	// persisting a new set when the stored one is from an earlier day.
	GetDailyChallenges(ctx context.Context, userID uuid.UUID, timezone string) ([]domain.Challenge, error)

	// ClaimReward claims a completed challenge, crediting its coins and XP to
	// the user exactly once. The challenge set and progress are written in
	// one transaction; achievements are evaluated after it commits.
	//
	// Returns ErrChallengeNotFound if the id is not in today's set.
	ClaimReward(ctx context.Context, userID uuid.UUID, in ClaimInput) (*ClaimResult, error)
}

type challengeServiceImpl struct {
	uow       store.UnitOfWork
	evaluator *achievement.Evaluator
	opts      Options
	logger    *slog.Logger
}

// NewChallengeService creates a ChallengeService.
// It returns an error if any of the required dependencies are nil.
func NewChallengeService(
	uow store.UnitOfWork,
	evaluator *achievement.Evaluator,
	opts Options,
	logger *slog.Logger,
) (ChallengeService, error) {
	if uow == nil {
		return nil, errors.New("unit of work cannot be nil")
	}
	if evaluator == nil {
		return nil, errors.New("achievement evaluator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &challengeServiceImpl{
		uow:       uow,
		evaluator: evaluator,
		opts:      opts.withDefaults(),
		logger:    logger.With(slog.String("component", "challenge_service")),
	}, nil
}

// GetDailyChallenges implements ChallengeService.
func (s *challengeServiceImpl) GetDailyChallenges(
	ctx context.Context,
	userID uuid.UUID,
	timezone string,
) ([]domain.Challenge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if err := validate.Var(timezone, "omitempty,timezone"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	now := s.opts.localNow(timezone)

	var challenges []domain.Challenge
	err := s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		set, err := tx.Challenges.Load(ctx, userID)
		if err != nil {
			return NewServiceError("challenge", "get daily challenges", "failed to load challenges", err)
		}
		if !s.opts.needsReset(set, now) {
			challenges = set
			return nil
		}

		// The draw is a write; lock and read again so a concurrent request's
		// progress on the current set is not overwritten.
		if _, err := lockProgress(ctx, tx.Progress, userID, now); err != nil {
			return err
		}
		if set, err = tx.Challenges.Load(ctx, userID); err != nil {
			return NewServiceError("challenge", "get daily challenges", "failed to load challenges", err)
		}

		tracker, reset := s.opts.dailyTracker(set, now)
		challenges = tracker.Challenges()
		if !reset {
			return nil
		}

		log.Debug("drew new daily challenge set")
		if err := tx.Challenges.Save(ctx, userID, challenges); err != nil {
			return NewServiceError("challenge", "get daily challenges", "failed to save challenges", err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to get daily challenges", slog.String("error", err.Error()))
		return nil, err
	}
	return challenges, nil
}

// ClaimReward implements ChallengeService.
func (s *challengeServiceImpl) ClaimReward(
	ctx context.Context,
	userID uuid.UUID,
	in ClaimInput,
) (*ClaimResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("challenge_id", in.ChallengeID))

	if err := validateInput(in); err != nil {
		return nil, err
	}
	now := s.opts.localNow(in.Timezone)

	result := &ClaimResult{UnlockedAchievements: []string{}}
	var (
		challenges    []domain.Challenge
		previousLevel int
	)

	err := s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		progress, err := lockProgress(ctx, tx.Progress, userID, now)
		if err != nil {
			return err
		}

		set, err := tx.Challenges.Load(ctx, userID)
		if err != nil {
			return NewServiceError("challenge", "claim reward", "failed to load challenges", err)
		}

		tracker, reset := s.opts.dailyTracker(set, now)
		if reset {
			// A stale set has been replaced; persist it so the new draw sticks.
			if err := tx.Challenges.Save(ctx, userID, tracker.Challenges()); err != nil {
				return NewServiceError("challenge", "claim reward", "failed to save challenges", err)
			}
		}
		if !contains(tracker.Challenges(), in.ChallengeID) {
			return ErrChallengeNotFound
		}

		claimed, ok := tracker.ClaimReward(in.ChallengeID, now)
		result.Challenge = claimed
		if !ok {
			return nil
		}

		previousLevel = progress.Level
		level := s.opts.Progression.ResolveLevelFromXP(progress.ExperiencePoints+claimed.XPReward, progress.Level)
		progress.Level = level.Level
		progress.ExperiencePoints = level.XP
		progress.Coins += claimed.CoinReward
		progress.UpdatedAt = now

		if err := tx.Progress.Update(ctx, progress); err != nil {
			return NewServiceError("challenge", "claim reward", "failed to save progress", err)
		}

		challenges = tracker.Challenges()
		if err := tx.Challenges.Save(ctx, userID, challenges); err != nil {
			return NewServiceError("challenge", "claim reward", "failed to save challenges", err)
		}

		result.Claimed = true
		result.CoinsAwarded = claimed.CoinReward
		result.XPAwarded = claimed.XPReward
		result.LeveledUp = level.LeveledUp(previousLevel)
		result.Progress = progress
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrChallengeNotFound) {
			log.Error("failed to claim challenge reward", slog.String("error", err.Error()))
		}
		return nil, err
	}

	if !result.Claimed {
		log.Debug("challenge not claimable",
			slog.Bool("is_completed", result.Challenge.IsCompleted),
			slog.Bool("is_claimed", result.Challenge.IsClaimed))
		return result, nil
	}

	result.UnlockedAchievements = s.evaluator.EvaluateAndUnlock(
		ctx,
		userID,
		buildMetrics(result.Progress, challenges, now, nil),
	)

	s.opts.publish(ctx, log, events.TypeChallengeClaimed, userID, now, events.ChallengeClaimed{
		ChallengeID: in.ChallengeID,
		Coins:       result.CoinsAwarded,
		XP:          result.XPAwarded,
	})
	if result.LeveledUp {
		s.opts.publish(ctx, log, events.TypeLevelUp, userID, now,
			events.LevelUp{From: previousLevel, To: result.Progress.Level})
	}
	publishUnlocked(ctx, s.opts, log, userID, now, result.UnlockedAchievements)

	log.Info("challenge reward claimed",
		slog.Int("coins_awarded", result.CoinsAwarded),
		slog.Int("xp_awarded", result.XPAwarded))
	return result, nil
}

func contains(challenges []domain.Challenge, id string) bool {
	for _, c := range challenges {
		if c.ID == id {
			return true
		}
	}
	return false
}

var _ ChallengeService = (*challengeServiceImpl)(nil)
