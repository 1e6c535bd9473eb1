package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/store"
)

const progressColumns = `user_id, experience_points, level, streak, coins,
	total_cards_reviewed, total_sessions_completed, time_spent_seconds,
	last_activity_at, created_at, updated_at`

// PostgresUserProgressStore implements the store.UserProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserProgressStore creates a new PostgreSQL implementation of the UserProgressStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserProgressStore(db store.DBTX, logger *slog.Logger) *PostgresUserProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_progress_store")),
	}
}

// Ensure PostgresUserProgressStore implements store.UserProgressStore interface
var _ store.UserProgressStore = (*PostgresUserProgressStore)(nil)

// WithTx implements store.UserProgressStore.WithTx
func (s *PostgresUserProgressStore) WithTx(tx *sqlx.Tx) store.UserProgressStore {
	return &PostgresUserProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.UserProgressStore.Get
func (s *PostgresUserProgressStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserProgress, error) {
	return s.get(ctx, userID, "")
}

// GetForUpdate implements store.UserProgressStore.GetForUpdate
func (s *PostgresUserProgressStore) GetForUpdate(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.UserProgress, error) {
	return s.get(ctx, userID, " FOR UPDATE")
}

func (s *PostgresUserProgressStore) get(
	ctx context.Context,
	userID uuid.UUID,
	lock string,
) (*domain.UserProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1` + lock

	var progress domain.UserProgress
	if err := sqlx.GetContext(ctx, s.db, &progress, query, userID); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			log.Debug("user progress not found", slog.String("user_id", userID.String()))
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get user progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("user_progress", "get", "query failed", mapped)
	}

	return &progress, nil
}

// Create implements store.UserProgressStore.Create
// Returns store.ErrProgressExists if the user already has a record. The
// conflict is absorbed by ON CONFLICT so an open transaction stays usable;
// against a concurrent uncommitted insert the statement waits for it to end.
func (s *PostgresUserProgressStore) Create(ctx context.Context, progress *domain.UserProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("user progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO user_progress (` + progressColumns + `)
		VALUES (:user_id, :experience_points, :level, :streak, :coins,
			:total_cards_reviewed, :total_sessions_completed, :time_spent_seconds,
			:last_activity_at, :created_at, :updated_at)
		ON CONFLICT (user_id) DO NOTHING
	`
	result, err := sqlx.NamedExecContext(ctx, s.db, query, progress)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("user progress already exists",
				slog.String("user_id", progress.UserID.String()))
			return store.ErrProgressExists
		}
		log.Error("failed to create user progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()))
		return store.NewStoreError("user_progress", "create", "insert failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrProgressExists); err != nil {
		log.Debug("user progress already exists",
			slog.String("user_id", progress.UserID.String()))
		return err
	}

	log.Info("user progress created", slog.String("user_id", progress.UserID.String()))
	return nil
}

// Update implements store.UserProgressStore.Update
// Returns store.ErrProgressNotFound if no record exists.
func (s *PostgresUserProgressStore) Update(ctx context.Context, progress *domain.UserProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("user progress validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE user_progress SET
			experience_points = :experience_points,
			level = :level,
			streak = :streak,
			coins = :coins,
			total_cards_reviewed = :total_cards_reviewed,
			total_sessions_completed = :total_sessions_completed,
			time_spent_seconds = :time_spent_seconds,
			last_activity_at = :last_activity_at,
			updated_at = :updated_at
		WHERE user_id = :user_id
	`
	result, err := sqlx.NamedExecContext(ctx, s.db, query, progress)
	if err != nil {
		log.Error("failed to update user progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()))
		return store.NewStoreError("user_progress", "update", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrProgressNotFound); err != nil {
		log.Debug("user progress not updated",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()))
		return err
	}

	log.Debug("user progress updated",
		slog.String("user_id", progress.UserID.String()),
		slog.Int("level", progress.Level),
		slog.Int("streak", progress.Streak))
	return nil
}
