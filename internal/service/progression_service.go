package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/achievement"
	"github.com/phrazzld/scry-quest/internal/domain/progression"
	"github.com/phrazzld/scry-quest/internal/events"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/store"
)

// SessionInput describes a completed study session. A session covers at most
// 100000 cards and one day of study time.
type SessionInput struct {
	TotalCards      int     `json:"total_cards"      validate:"gte=0,lte=100000"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gte=0,lte=86400"`
	// Timezone is an IANA zone name used for streak days, the daily challenge
	// boundary and the night-owl hour. Empty selects the server default.
	Timezone         string `json:"timezone,omitempty"          validate:"omitempty,timezone"`
	DecorationsCount *int   `json:"decorations_count,omitempty" validate:"omitempty,gte=0"`
}

// SessionResult is the outcome of CompleteSession.
type SessionResult struct {
	Progress             *domain.UserProgress `json:"progress"`
	XPEarned             int                  `json:"xp_earned"`
	LeveledUp            bool                 `json:"leveled_up"`
	XPToNextLevel        int                  `json:"xp_to_next_level"`
	Challenges           []domain.Challenge   `json:"challenges"`
	UnlockedAchievements []string             `json:"unlocked_achievements"`
}

// ProgressSnapshot is a user's progress plus the XP still needed to level up.
type ProgressSnapshot struct {
	Progress      *domain.UserProgress `json:"progress"`
	XPToNextLevel int                  `json:"xp_to_next_level"`
}

// ProgressionService applies study sessions to a user's progression.
type ProgressionService interface {
	// CompleteSession records a finished study session.
	//
	// Within one transaction it updates the streak, awards session XP and
	// resolves the level, adds the session to the user's totals, then advances
	// the daily challenges (cards, sessions, minutes), drawing a fresh set
	// first if the stored one belongs to an earlier day. After the commit it
	// evaluates achievements against the new totals.
	//
	// Returns ErrInvalidInput for negative inputs or an unknown time zone.
	CompleteSession(ctx context.Context, userID uuid.UUID, in SessionInput) (*SessionResult, error)

	// GetProgress returns the user's progress, or the starting values for a
	// user who has not completed a session yet.
	GetProgress(ctx context.Context, userID uuid.UUID) (*ProgressSnapshot, error)
}

type progressionServiceImpl struct {
	uow       store.UnitOfWork
	evaluator *achievement.Evaluator
	opts      Options
	logger    *slog.Logger
}

// NewProgressionService creates a ProgressionService.
// It returns an error if any of the required dependencies are nil.
func NewProgressionService(
	uow store.UnitOfWork,
	evaluator *achievement.Evaluator,
	opts Options,
	logger *slog.Logger,
) (ProgressionService, error) {
	if uow == nil {
		return nil, errors.New("unit of work cannot be nil")
	}
	if evaluator == nil {
		return nil, errors.New("achievement evaluator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &progressionServiceImpl{
		uow:       uow,
		evaluator: evaluator,
		opts:      opts.withDefaults(),
		logger:    logger.With(slog.String("component", "progression_service")),
	}, nil
}

// CompleteSession implements ProgressionService.
func (s *progressionServiceImpl) CompleteSession(
	ctx context.Context,
	userID uuid.UUID,
	in SessionInput,
) (*SessionResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := s.opts.localNow(in.Timezone)
	result := &SessionResult{}

	var previousLevel int
	err := s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		progress, err := lockProgress(ctx, tx.Progress, userID, now)
		if err != nil {
			return err
		}

		progress.Streak = s.opts.Progression.NextStreak(progress.LastActivityAt, progress.Streak, now)

		xp := s.opts.Progression.XPForSession(in.TotalCards, in.DurationSeconds)
		previousLevel = progress.Level
		level := s.opts.Progression.ResolveLevelFromXP(progress.ExperiencePoints+xp, progress.Level)
		progress.Level = level.Level
		progress.ExperiencePoints = level.XP

		progress.TotalCardsReviewed += in.TotalCards
		progress.TotalSessionsCompleted++
		progress.TimeSpentSeconds += int(in.DurationSeconds)
		progress.LastActivityAt = now
		progress.UpdatedAt = now

		if err := tx.Progress.Update(ctx, progress); err != nil {
			return NewServiceError("progression", "complete session", "failed to save progress", err)
		}

		set, err := tx.Challenges.Load(ctx, userID)
		if err != nil {
			return NewServiceError("progression", "complete session", "failed to load challenges", err)
		}
		tracker, reset := s.opts.dailyTracker(set, now)
		if reset {
			log.Debug("drew new daily challenge set")
		}
		tracker.UpdateProgress(domain.ChallengeCategoryCards, in.TotalCards, now)
		tracker.UpdateProgress(domain.ChallengeCategorySessions, 1, now)
		tracker.UpdateProgress(domain.ChallengeCategoryMinutes, int(in.DurationSeconds/60), now)

		result.Challenges = tracker.Challenges()
		if err := tx.Challenges.Save(ctx, userID, result.Challenges); err != nil {
			return NewServiceError("progression", "complete session", "failed to save challenges", err)
		}

		result.Progress = progress
		result.XPEarned = xp
		result.LeveledUp = level.LeveledUp(previousLevel)
		return nil
	})
	if err != nil {
		log.Error("failed to complete session", slog.String("error", err.Error()))
		return nil, err
	}

	result.XPToNextLevel = xpToNextLevel(s.opts.Progression, result.Progress)
	result.UnlockedAchievements = s.evaluator.EvaluateAndUnlock(
		ctx,
		userID,
		buildMetrics(result.Progress, result.Challenges, now, in.DecorationsCount),
	)

	s.opts.publish(ctx, log, events.TypeSessionCompleted, userID, now, events.SessionCompleted{
		TotalCards:      in.TotalCards,
		DurationSeconds: int(in.DurationSeconds),
		XPEarned:        result.XPEarned,
		Level:           result.Progress.Level,
		Streak:          result.Progress.Streak,
	})
	if result.LeveledUp {
		s.opts.publish(ctx, log, events.TypeLevelUp, userID, now,
			events.LevelUp{From: previousLevel, To: result.Progress.Level})
	}
	publishUnlocked(ctx, s.opts, log, userID, now, result.UnlockedAchievements)

	log.Info("session completed",
		slog.Int("xp_earned", result.XPEarned),
		slog.Int("level", result.Progress.Level),
		slog.Int("streak", result.Progress.Streak),
		slog.Bool("leveled_up", result.LeveledUp),
		slog.Int("achievements_unlocked", len(result.UnlockedAchievements)))
	return result, nil
}

// GetProgress implements ProgressionService.
func (s *progressionServiceImpl) GetProgress(ctx context.Context, userID uuid.UUID) (*ProgressSnapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	progress, err := s.uow.Stores().Progress.Get(ctx, userID)
	if errors.Is(err, store.ErrProgressNotFound) {
		progress, err = domain.NewUserProgress(userID, s.opts.Now())
	}
	if err != nil {
		log.Error("failed to load progress",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("progression", "get progress", "failed to load progress", err)
	}

	return &ProgressSnapshot{
		Progress:      progress,
		XPToNextLevel: xpToNextLevel(s.opts.Progression, progress),
	}, nil
}

// lockProgress locks the user's progress row for the rest of the transaction,
// creating the starting record first if the user has none. Every flow that
// rewrites the daily challenge set takes this lock before reading the set, so
// concurrent requests for one user apply their changes one after another.
func lockProgress(
	ctx context.Context,
	progressStore store.UserProgressStore,
	userID uuid.UUID,
	now time.Time,
) (*domain.UserProgress, error) {
	progress, err := progressStore.GetForUpdate(ctx, userID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, store.ErrProgressNotFound) {
		return nil, NewServiceError("progression", "load progress", "failed to load progress", err)
	}

	progress, err = domain.NewUserProgress(userID, now)
	if err != nil {
		return nil, NewServiceError("progression", "load progress", "invalid user", err)
	}
	err = progressStore.Create(ctx, progress)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, store.ErrProgressExists) {
		return nil, NewServiceError("progression", "load progress", "failed to create progress", err)
	}

	// Another request created the record first.
	progress, err = progressStore.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, NewServiceError("progression", "load progress", "failed to load progress", err)
	}
	return progress, nil
}

func xpToNextLevel(curve progression.Service, p *domain.UserProgress) int {
	return max(curve.XPRequiredForLevel(p.Level)-p.ExperiencePoints, 0)
}

// buildMetrics assembles the achievement metrics from committed state.
func buildMetrics(
	p *domain.UserProgress,
	challenges []domain.Challenge,
	now time.Time,
	decorations *int,
) achievement.Metrics {
	streak := p.Streak
	sessions := p.TotalSessionsCompleted
	seconds := p.TimeSpentSeconds
	return achievement.Metrics{
		TotalCards:       p.TotalCardsReviewed,
		CurrentStreak:    &streak,
		TotalSessions:    &sessions,
		TimeSpentSeconds: &seconds,
		DailyChallenges:  achievement.StatusesOf(challenges),
		NowHour:          now.Hour(),
		DecorationsCount: decorations,
	}
}

var _ ProgressionService = (*progressionServiceImpl)(nil)

// publishUnlocked emits TypeAchievementsUnlocked when ids is non-empty.
func publishUnlocked(ctx context.Context, opts Options, log *slog.Logger, userID uuid.UUID, at time.Time, ids []string) {
	if len(ids) == 0 {
		return
	}
	opts.publish(ctx, log, events.TypeAchievementsUnlocked, userID, at, events.AchievementsUnlocked{IDs: ids})
}
