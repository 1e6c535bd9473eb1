package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/segment"
	"github.com/phrazzld/scry-quest/internal/grading"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/store"
)

// ReviewInput is a free-text answer to grade.
type ReviewInput struct {
	Question        string `json:"question"`
	ReferenceAnswer string `json:"reference_answer"   validate:"required"`
	UserAnswer      string `json:"user_answer"        validate:"required"`
	Timezone        string `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

// ReviewResult is the graded, segmented answer.
type ReviewResult struct {
	Feedback          *domain.Feedback       `json:"feedback"`
	UserSegments      []domain.AnswerSegment `json:"user_segments"`
	ReferenceSegments []domain.AnswerSegment `json:"reference_segments"`
	Challenges        []domain.Challenge     `json:"challenges,omitempty"`
}

// ReviewService grades free-text answers.
type ReviewService interface {
	// SubmitReview sends the answer to the grading oracle, drops feedback
	// parts that do not occur in the text they describe, and segments both
	// the user's answer and the reference answer. A successful review
	// advances the user's "reviews" challenges.
	//
	// Returns ErrGradingUnavailable when the oracle fails; segmentation is
	// not attempted in that case.
	SubmitReview(ctx context.Context, userID uuid.UUID, in ReviewInput) (*ReviewResult, error)
}

type reviewServiceImpl struct {
	grader grading.Grader
	uow    store.UnitOfWork
	opts   Options
	logger *slog.Logger
}

// NewReviewService creates a ReviewService.
// It returns an error if any of the required dependencies are nil.
func NewReviewService(
	grader grading.Grader,
	uow store.UnitOfWork,
	opts Options,
	logger *slog.Logger,
) (ReviewService, error) {
	if grader == nil {
		return nil, errors.New("grader cannot be nil")
	}
	if uow == nil {
		return nil, errors.New("unit of work cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		grader: grader,
		uow:    uow,
		opts:   opts.withDefaults(),
		logger: logger.With(slog.String("component", "review_service")),
	}, nil
}

// SubmitReview implements ReviewService.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	in ReviewInput,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if err := validateInput(in); err != nil {
		return nil, err
	}

	req := grading.Request{
		Question:        in.Question,
		ReferenceAnswer: in.ReferenceAnswer,
		UserAnswer:      in.UserAnswer,
	}

	fb, err := s.grader.Grade(ctx, req)
	if err != nil {
		if errors.Is(err, grading.ErrEmptyAnswer) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		log.Error("grading failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrGradingUnavailable, err)
	}

	fb = grading.FilterFeedback(fb, req)
	result := &ReviewResult{
		Feedback:          fb,
		UserSegments:      segment.SegmentUserAnswer(in.UserAnswer, *fb),
		ReferenceSegments: segment.SegmentCorrectAnswer(in.ReferenceAnswer, *fb),
	}

	challenges, err := s.recordReview(ctx, userID, in.Timezone)
	if err != nil {
		// The graded answer is still returned; the challenge catches up on
		// the next review.
		log.Warn("failed to update review challenges", slog.String("error", err.Error()))
	}
	result.Challenges = challenges

	log.Debug("review graded",
		slog.Int("correct_parts", len(fb.CorrectParts)),
		slog.Int("incorrect_parts", len(fb.IncorrectParts)),
		slog.Int("missing_points", len(fb.MissingPoints)))
	return result, nil
}

// recordReview advances the "reviews" challenges of today's set.
func (s *reviewServiceImpl) recordReview(
	ctx context.Context,
	userID uuid.UUID,
	timezone string,
) ([]domain.Challenge, error) {
	now := s.opts.localNow(timezone)

	var challenges []domain.Challenge
	err := s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		if _, err := lockProgress(ctx, tx.Progress, userID, now); err != nil {
			return err
		}

		set, err := tx.Challenges.Load(ctx, userID)
		if err != nil {
			return err
		}

		tracker, reset := s.opts.dailyTracker(set, now)
		changed := tracker.UpdateProgress(domain.ChallengeCategoryReviews, 1, now)
		challenges = tracker.Challenges()
		if !reset && !changed {
			return nil
		}
		return tx.Challenges.Save(ctx, userID, challenges)
	})
	if err != nil {
		return nil, NewServiceError("review", "record review", "failed to update challenges", err)
	}
	return challenges, nil
}

var _ ReviewService = (*reviewServiceImpl)(nil)
