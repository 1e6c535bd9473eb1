package achievement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
)

// ErrLocalState is returned when the local unlock state cannot be updated.
var ErrLocalState = errors.New("local unlock state unavailable")

// UnlockStore is the durable record of a user's unlocked achievements.
type UnlockStore interface {
	// GetUnlocked returns every achievement id the user has unlocked.
	GetUnlocked(ctx context.Context, userID uuid.UUID) ([]string, error)

	// SaveUnlocked writes the user's full unlocked set in a single batched
	// write and returns the ids that were not stored before. Ids already
	// present, including ones written concurrently by another process, are
	// left out of the result.
	SaveUnlocked(ctx context.Context, userID uuid.UUID, ids []string) ([]string, error)
}

// LocalState is the process-local view of unlocked achievements.
type LocalState interface {
	// Get returns the cached set for a user; ok is false if not yet loaded.
	Get(userID uuid.UUID) (set UnlockSet, ok bool)

	// Put replaces the cached set for a user.
	Put(userID uuid.UUID, set UnlockSet)

	// Mark adds ids to a user's cached set.
	Mark(userID uuid.UUID, ids ...string) error
}

// Evaluator evaluates achievement predicates and records new unlocks in the
// durable store and then in local state, never partially. Evaluations for one
// user run one at a time.
type Evaluator struct {
	tiers   []domain.AchievementTier
	durable UnlockStore
	local   LocalState
	locks   *userLocks
	logger  *slog.Logger
}

// NewEvaluator creates an Evaluator. A nil tiers slice selects
// domain.DefaultAchievementTiers and a nil local state a fresh MemoryCache.
func NewEvaluator(
	durable UnlockStore,
	local LocalState,
	tiers []domain.AchievementTier,
	logger *slog.Logger,
) *Evaluator {
	if durable == nil {
		panic("durable unlock store cannot be nil")
	}
	if local == nil {
		local = NewMemoryCache()
	}
	if tiers == nil {
		tiers = domain.DefaultAchievementTiers
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Evaluator{
		tiers:   tiers,
		durable: durable,
		local:   local,
		locks:   newUserLocks(),
		logger:  logger.With(slog.String("component", "achievement_evaluator")),
	}
}

// Tiers returns the catalog the evaluator tests against.
func (e *Evaluator) Tiers() []domain.AchievementTier {
	return e.tiers
}

// Unlocked returns the user's unlocked set, loading it from the durable store
// into local state on first access.
func (e *Evaluator) Unlocked(ctx context.Context, userID uuid.UUID) (UnlockSet, error) {
	if set, ok := e.local.Get(userID); ok {
		return set, nil
	}

	ids, err := e.durable.GetUnlocked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}

	set := NewUnlockSet(ids...)
	e.local.Put(userID, set)
	return set, nil
}

// EvaluateAndUnlock returns the achievements newly unlocked by metrics.
//
// When nothing new is satisfied it returns an empty slice without writing.
// Otherwise the union of old and new ids is saved in one durable write and
// then marked locally. Only ids the durable write actually inserted are
// returned, so a tier unlocked by a concurrent evaluation is reported once.
// Any failure is logged and yields an empty slice with no local change; the
// next evaluation will find the same tiers again.
func (e *Evaluator) EvaluateAndUnlock(ctx context.Context, userID uuid.UUID, metrics Metrics) []string {
	log := logger.FromContextOrDefault(ctx, e.logger).With(slog.String("user_id", userID.String()))

	unlock := e.locks.lock(userID)
	defer unlock()

	unlocked, err := e.Unlocked(ctx, userID)
	if err != nil {
		log.Error("failed to load unlock state", slog.String("error", err.Error()))
		return []string{}
	}

	newly := Evaluate(metrics, unlocked, e.tiers)
	if len(newly) == 0 {
		return []string{}
	}

	inserted, err := e.durable.SaveUnlocked(ctx, userID, unlocked.Union(newly...).IDs())
	if err != nil {
		log.Error("failed to persist unlocked achievements",
			slog.String("error", err.Error()),
			slog.Any("achievement_ids", newly))
		return []string{}
	}

	if err := e.local.Mark(userID, newly...); err != nil {
		log.Error("failed to record unlocked achievements locally",
			slog.String("error", err.Error()),
			slog.Any("achievement_ids", newly))
		return []string{}
	}

	reported := onlyInserted(newly, inserted)
	if len(reported) < len(newly) {
		log.Debug("achievements already unlocked elsewhere",
			slog.Any("achievement_ids", newly),
			slog.Any("inserted_ids", reported))
	}
	if len(reported) == 0 {
		return []string{}
	}

	log.Info("achievements unlocked", slog.Any("achievement_ids", reported))
	return reported
}

// onlyInserted keeps the ids of newly that appear in inserted, in order.
func onlyInserted(newly, inserted []string) []string {
	stored := NewUnlockSet(inserted...)
	out := make([]string, 0, len(newly))
	for _, id := range newly {
		if stored.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
