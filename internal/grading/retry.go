package grading

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"github.com/phrazzld/scry-quest/internal/domain"
)

// RetryPolicy bounds how often a grader re-attempts a transient failure.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Do runs attempt until it succeeds, returns a non-retryable error, or the
// policy is exhausted. Exhaustion is reported as ErrTransientFailure.
func (p RetryPolicy) Do(
	ctx context.Context,
	logger *slog.Logger,
	attempt func(ctx context.Context) (*domain.Feedback, error),
) (*domain.Feedback, error) {
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var (
		result *domain.Feedback
		n      int
	)
	err := retry.Do(
		func() error {
			n++
			fb, err := attempt(ctx)
			if err != nil {
				logger.WarnContext(ctx, "grading attempt failed",
					slog.Int("attempt", n),
					slog.String("error", err.Error()))
				if !IsRetryable(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = fb
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(maxRetries+1)),
		retry.Delay(p.BaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if IsRetryable(err) {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				ErrTransientFailure, maxRetries, err)
		}
		return nil, err
	}
	return result, nil
}
