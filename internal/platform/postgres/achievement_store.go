package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/store"
)

type achievementRow struct {
	UserID        uuid.UUID `db:"user_id"`
	AchievementID string    `db:"achievement_id"`
	UnlockedAt    time.Time `db:"unlocked_at"`
}

// PostgresAchievementStore implements the store.AchievementStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAchievementStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresAchievementStore creates a new PostgreSQL implementation of the AchievementStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAchievementStore(db store.DBTX, logger *slog.Logger) *PostgresAchievementStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAchievementStore{
		db:     db,
		logger: logger.With(slog.String("component", "achievement_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ensure PostgresAchievementStore implements store.AchievementStore interface
var _ store.AchievementStore = (*PostgresAchievementStore)(nil)

// WithTx implements store.AchievementStore.WithTx
func (s *PostgresAchievementStore) WithTx(tx *sqlx.Tx) store.AchievementStore {
	return &PostgresAchievementStore{
		db:     tx,
		logger: s.logger,
		now:    s.now,
	}
}

// GetUnlocked implements store.AchievementStore.GetUnlocked
func (s *PostgresAchievementStore) GetUnlocked(ctx context.Context, userID uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ids := []string{}
	query := `SELECT achievement_id FROM user_achievements WHERE user_id = $1 ORDER BY achievement_id`
	if err := sqlx.SelectContext(ctx, s.db, &ids, query, userID); err != nil {
		log.Error("failed to load unlocked achievements",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("achievement", "get", "query failed", MapError(err))
	}

	return ids, nil
}

// SaveUnlocked implements store.AchievementStore.SaveUnlocked
// All ids go out in a single multi-row insert; rows already present are kept
// and only the ids inserted by this statement are returned.
func (s *PostgresAchievementStore) SaveUnlocked(
	ctx context.Context,
	userID uuid.UUID,
	ids []string,
) ([]string, error) {
	inserted := []string{}
	if len(ids) == 0 {
		return inserted, nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now()
	rows := make([]achievementRow, len(ids))
	for i, id := range ids {
		rows[i] = achievementRow{UserID: userID, AchievementID: id, UnlockedAt: now}
	}

	query := `
		INSERT INTO user_achievements (user_id, achievement_id, unlocked_at)
		VALUES (:user_id, :achievement_id, :unlocked_at)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
		RETURNING achievement_id
	`
	result, err := sqlx.NamedQueryContext(ctx, s.db, query, rows)
	if err != nil {
		log.Error("failed to save unlocked achievements",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("count", len(ids)))
		return nil, store.NewStoreError("achievement", "save", "insert failed", MapError(err))
	}
	defer func() { _ = result.Close() }()

	for result.Next() {
		var id string
		if err := result.Scan(&id); err != nil {
			return nil, store.NewStoreError("achievement", "save", "scan failed", MapError(err))
		}
		inserted = append(inserted, id)
	}
	if err := result.Err(); err != nil {
		log.Error("failed to read inserted achievements",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("achievement", "save", "insert failed", MapError(err))
	}

	log.Debug("unlocked achievements saved",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(ids)),
		slog.Int("inserted", len(inserted)))
	return inserted, nil
}
