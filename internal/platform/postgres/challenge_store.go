package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/store"
)

// challengeRow is the persisted state of one challenge. Template fields are
// resolved from the catalog on load.
type challengeRow struct {
	UserID      uuid.UUID `db:"user_id"`
	ChallengeID string    `db:"challenge_id"`
	Position    int       `db:"position"`
	Progress    int       `db:"progress"`
	IsCompleted bool      `db:"is_completed"`
	IsClaimed   bool      `db:"is_claimed"`
	LastUpdated time.Time `db:"last_updated"`
}

// PostgresChallengeStore implements the store.ChallengeStore interface
// using a PostgreSQL database as the storage backend.
type PostgresChallengeStore struct {
	db      store.DBTX
	catalog []domain.ChallengeTemplate
	logger  *slog.Logger
}

// NewPostgresChallengeStore creates a new PostgreSQL implementation of the ChallengeStore interface.
// Stored challenge ids are resolved against catalog; a nil catalog selects
// domain.DefaultChallengeCatalog.
func NewPostgresChallengeStore(
	db store.DBTX,
	catalog []domain.ChallengeTemplate,
	logger *slog.Logger,
) *PostgresChallengeStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if catalog == nil {
		catalog = domain.DefaultChallengeCatalog
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresChallengeStore{
		db:      db,
		catalog: catalog,
		logger:  logger.With(slog.String("component", "challenge_store")),
	}
}

// Ensure PostgresChallengeStore implements store.ChallengeStore interface
var _ store.ChallengeStore = (*PostgresChallengeStore)(nil)

// WithTx implements store.ChallengeStore.WithTx
func (s *PostgresChallengeStore) WithTx(tx *sqlx.Tx) store.ChallengeStore {
	return &PostgresChallengeStore{
		db:      tx,
		catalog: s.catalog,
		logger:  s.logger,
	}
}

// Load implements store.ChallengeStore.Load
// Rows whose id is no longer in the catalog are skipped.
func (s *PostgresChallengeStore) Load(ctx context.Context, userID uuid.UUID) ([]domain.Challenge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, challenge_id, position, progress, is_completed, is_claimed, last_updated
		FROM daily_challenges
		WHERE user_id = $1
		ORDER BY position
	`

	var rows []challengeRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, userID); err != nil {
		log.Error("failed to load daily challenges",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("challenge", "load", "query failed", MapError(err))
	}

	challenges := make([]domain.Challenge, 0, len(rows))
	for _, row := range rows {
		tmpl, err := domain.FindChallengeTemplate(s.catalog, row.ChallengeID)
		if err != nil {
			log.Warn("skipping stored challenge missing from catalog",
				slog.String("challenge_id", row.ChallengeID),
				slog.String("user_id", userID.String()))
			continue
		}
		challenges = append(challenges, domain.Challenge{
			ChallengeTemplate: tmpl,
			Progress:          min(row.Progress, tmpl.Target),
			IsCompleted:       row.IsCompleted,
			IsClaimed:         row.IsClaimed,
			LastUpdated:       row.LastUpdated,
		})
	}

	return challenges, nil
}

// Save implements store.ChallengeStore.Save
// The delete and insert should run inside one transaction; see store.UnitOfWork.
func (s *PostgresChallengeStore) Save(
	ctx context.Context,
	userID uuid.UUID,
	challenges []domain.Challenge,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows := make([]challengeRow, 0, len(challenges))
	for i, c := range challenges {
		if err := c.Validate(); err != nil {
			log.Warn("challenge validation failed during save",
				slog.String("error", err.Error()),
				slog.String("challenge_id", c.ID))
			return store.NewStoreError("challenge", "save", "invalid challenge", store.ErrInvalidEntity)
		}
		rows = append(rows, challengeRow{
			UserID:      userID,
			ChallengeID: c.ID,
			Position:    i,
			Progress:    c.Progress,
			IsCompleted: c.IsCompleted,
			IsClaimed:   c.IsClaimed,
			LastUpdated: c.LastUpdated,
		})
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM daily_challenges WHERE user_id = $1`, userID); err != nil {
		log.Error("failed to clear daily challenges",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return store.NewStoreError("challenge", "save", "delete failed", MapError(err))
	}

	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO daily_challenges
			(user_id, challenge_id, position, progress, is_completed, is_claimed, last_updated)
		VALUES
			(:user_id, :challenge_id, :position, :progress, :is_completed, :is_claimed, :last_updated)
	`
	if _, err := sqlx.NamedExecContext(ctx, s.db, query, rows); err != nil {
		log.Error("failed to insert daily challenges",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("count", len(rows)))
		return store.NewStoreError("challenge", "save", "insert failed", MapError(err))
	}

	log.Debug("daily challenges saved",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(rows)))
	return nil
}

// DeleteBefore implements store.ChallengeStore.DeleteBefore
func (s *PostgresChallengeStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM daily_challenges WHERE last_updated < $1`, cutoff)
	if err != nil {
		log.Error("failed to delete stale daily challenges",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff))
		return 0, store.NewStoreError("challenge", "delete", "delete failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("challenge", "delete", "rows affected unavailable", err)
	}

	log.Info("stale daily challenges deleted",
		slog.Int64("count", n),
		slog.Time("cutoff", cutoff))
	return n, nil
}
