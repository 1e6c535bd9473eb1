package grading

import (
	"context"
	"fmt"

	"github.com/phrazzld/scry-quest/internal/domain"
	"golang.org/x/time/rate"
)

// RateLimited throttles calls to the wrapped Grader.
type RateLimited struct {
	next    Grader
	limiter *rate.Limiter
}

// NewRateLimited wraps next with a token bucket allowing rps requests per
// second with the given burst. A non-positive rps disables limiting.
func NewRateLimited(next Grader, rps float64, burst int) *RateLimited {
	if next == nil {
		panic("grader cannot be nil")
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Grade waits for a token, then delegates.
func (r *RateLimited) Grade(ctx context.Context, req Request) (*domain.Feedback, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrTransientFailure, err)
	}
	return r.next.Grade(ctx, req)
}

var _ Grader = (*RateLimited)(nil)
