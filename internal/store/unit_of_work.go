package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
)

// Stores groups the stores a service works with.
type Stores struct {
	Progress     UserProgressStore
	Challenges   ChallengeStore
	Achievements AchievementStore
}

// UnitOfWork runs a function against stores bound to a single transaction.
type UnitOfWork interface {
	// Stores returns the non-transactional stores.
	Stores() Stores

	// Do runs fn with stores bound to one transaction, committing if fn
	// returns nil and rolling back otherwise.
	Do(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}

// SQLUnitOfWork is a UnitOfWork backed by a sqlx database handle.
type SQLUnitOfWork struct {
	db     *sqlx.DB
	stores Stores
}

// NewSQLUnitOfWork creates a SQLUnitOfWork. It panics if db or any store is nil.
func NewSQLUnitOfWork(db *sqlx.DB, stores Stores) *SQLUnitOfWork {
	if db == nil {
		panic("db cannot be nil")
	}
	if stores.Progress == nil || stores.Challenges == nil || stores.Achievements == nil {
		panic("stores cannot be nil")
	}
	return &SQLUnitOfWork{db: db, stores: stores}
}

// Stores implements UnitOfWork.
func (u *SQLUnitOfWork) Stores() Stores {
	return u.stores
}

// Do implements UnitOfWork. A panic in fn rolls the transaction back and is
// re-raised. A failed rollback is reported together with fn's error.
func (u *SQLUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx Stores) error) (err error) {
	log := logger.FromContext(ctx)

	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		p := recover()
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("error", rbErr.Error()),
				slog.Any("panic", p))
			if p == nil {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
		if p != nil {
			// ALLOW-PANIC: re-raised after rollback
			panic(p)
		}
	}()

	if err = fn(ctx, Stores{
		Progress:     u.stores.Progress.WithTx(tx),
		Challenges:   u.stores.Challenges.WithTx(tx),
		Achievements: u.stores.Achievements.WithTx(tx),
	}); err != nil {
		log.Debug("rolling back transaction", slog.String("error", err.Error()))
		return err
	}

	committed = true
	if err = tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to commit transaction: %w", ErrTransactionFailed, err)
	}
	return nil
}

var _ UnitOfWork = (*SQLUnitOfWork)(nil)
