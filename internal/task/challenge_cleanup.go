package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-quest/internal/store"
)

// ChallengeCleanupTaskName is the scheduler name of the cleanup job.
const ChallengeCleanupTaskName = "challenge_cleanup"

// ChallengeCleanupTask deletes daily challenge rows that have not been
// touched within the retention window. A user's set is regenerated on their
// next visit, so removing stale rows loses nothing.
type ChallengeCleanupTask struct {
	challenges store.ChallengeStore
	retention  time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

var _ Task = (*ChallengeCleanupTask)(nil)

// NewChallengeCleanupTask creates a cleanup task keeping retentionDays days
// of challenge rows.
func NewChallengeCleanupTask(
	challenges store.ChallengeStore,
	retentionDays int,
	logger *slog.Logger,
) (*ChallengeCleanupTask, error) {
	if challenges == nil {
		return nil, errors.New("challenge store cannot be nil")
	}
	if retentionDays < 1 {
		return nil, fmt.Errorf("retention must be at least one day, got %d", retentionDays)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChallengeCleanupTask{
		challenges: challenges,
		retention:  time.Duration(retentionDays) * 24 * time.Hour,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "challenge_cleanup")),
	}, nil
}

// Name implements Task.
func (t *ChallengeCleanupTask) Name() string {
	return ChallengeCleanupTaskName
}

// Run implements Task.
func (t *ChallengeCleanupTask) Run(ctx context.Context) error {
	cutoff := t.now().UTC().Add(-t.retention)
	start := time.Now()

	removed, err := t.challenges.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete challenges before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	t.logger.Info("stale challenges removed",
		slog.Int64("removed", removed),
		slog.Time("cutoff", cutoff),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
