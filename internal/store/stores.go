package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-quest/internal/domain"
)

// UserProgressStore defines the interface for user progress persistence.
// Writes are last-write-wins by field; there is no conflict resolution.
type UserProgressStore interface {
	// Get retrieves a user's progress.
	// Returns ErrProgressNotFound if the user has no record yet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error)

	// GetForUpdate retrieves a user's progress and locks the row until the
	// surrounding transaction ends. Outside a transaction it behaves like Get.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error)

	// Create inserts a new progress record.
	// Returns ErrProgressExists if one already exists for the user. A
	// conflicting insert leaves the surrounding transaction usable, so the
	// caller can read the existing row with GetForUpdate.
	Create(ctx context.Context, progress *domain.UserProgress) error

	// Update overwrites an existing progress record.
	// Returns ErrProgressNotFound if no record exists.
	Update(ctx context.Context, progress *domain.UserProgress) error

	// WithTx returns a new store instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) UserProgressStore
}

// ChallengeStore persists each user's active daily challenge set.
type ChallengeStore interface {
	// Load returns the user's persisted set, or an empty slice.
	Load(ctx context.Context, userID uuid.UUID) ([]domain.Challenge, error)

	// Save replaces the user's persisted set.
	Save(ctx context.Context, userID uuid.UUID, challenges []domain.Challenge) error

	// DeleteBefore removes challenge rows last updated before cutoff and
	// returns the number of rows removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// WithTx returns a new store instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) ChallengeStore
}

// AchievementStore persists each user's set of unlocked achievement ids.
type AchievementStore interface {
	// GetUnlocked returns every achievement id the user has unlocked.
	GetUnlocked(ctx context.Context, userID uuid.UUID) ([]string, error)

	// SaveUnlocked writes the user's full unlocked set in one batched statement
	// and returns the ids that were inserted by this call. Ids already stored
	// are kept; the set never shrinks.
	SaveUnlocked(ctx context.Context, userID uuid.UUID, ids []string) ([]string, error)

	// WithTx returns a new store instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) AchievementStore
}
