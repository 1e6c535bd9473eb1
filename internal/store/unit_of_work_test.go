package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newRecordingUnitOfWork(t *testing.T) (*SQLUnitOfWork, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewSQLUnitOfWork(db, Stores{
		Progress:     &txRecordingProgressStore{},
		Challenges:   &txRecordingChallengeStore{},
		Achievements: &txRecordingAchievementStore{},
	}), mock
}

func TestSQLUnitOfWorkDo(t *testing.T) {
	fnErr := errors.New("function failed")

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		fn      func(ctx context.Context, tx Stores) error
		wantErr []error
		wantMsg string
	}{
		{
			name: "commits on success",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fn: func(ctx context.Context, tx Stores) error { return nil },
		},
		{
			name: "rolls back on error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn:      func(ctx context.Context, tx Stores) error { return fnErr },
			wantErr: []error{fnErr},
		},
		{
			name: "begin fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("begin transaction failed"))
			},
			fn:      func(ctx context.Context, tx Stores) error { return nil },
			wantErr: []error{ErrTransactionFailed},
			wantMsg: "failed to begin transaction",
		},
		{
			name: "commit fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(errors.New("connection lost"))
			},
			fn:      func(ctx context.Context, tx Stores) error { return nil },
			wantErr: []error{ErrTransactionFailed},
			wantMsg: "failed to commit transaction",
		},
		{
			name: "rollback fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(errors.New("rollback failed"))
			},
			fn:      func(ctx context.Context, tx Stores) error { return fnErr },
			wantErr: []error{fnErr},
			wantMsg: "rollback failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow, mock := newRecordingUnitOfWork(t)
			tt.setup(mock)

			err := uow.Do(context.Background(), tt.fn)
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLUnitOfWorkRollsBackOnPanic(t *testing.T) {
	for _, rollbackErr := range []error{nil, errors.New("rollback failed")} {
		uow, mock := newRecordingUnitOfWork(t)
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(rollbackErr)

		assert.PanicsWithValue(t, "test panic", func() {
			_ = uow.Do(context.Background(), func(ctx context.Context, tx Stores) error {
				panic("test panic")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestSQLUnitOfWorkBindsStoresToTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	progress := &txRecordingProgressStore{}
	challenges := &txRecordingChallengeStore{}
	achievements := &txRecordingAchievementStore{}
	uow := NewSQLUnitOfWork(db, Stores{Progress: progress, Challenges: challenges, Achievements: achievements})

	assert.Same(t, progress, uow.Stores().Progress)

	err := uow.Do(context.Background(), func(ctx context.Context, tx Stores) error {
		assert.NotNil(t, tx.Progress.(*txRecordingProgressStore).tx)
		assert.NotNil(t, tx.Challenges.(*txRecordingChallengeStore).tx)
		assert.NotNil(t, tx.Achievements.(*txRecordingAchievementStore).tx)
		return nil
	})

	require.NoError(t, err)
	assert.Nil(t, progress.tx, "base store must stay unbound")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewSQLUnitOfWorkPanicsOnMissingStore(t *testing.T) {
	db, _ := newMockDB(t)
	assert.Panics(t, func() { NewSQLUnitOfWork(db, Stores{}) })
	assert.Panics(t, func() { NewSQLUnitOfWork(nil, Stores{}) })
}
