package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/segment"
	"github.com/phrazzld/scry-quest/internal/grading"
	"github.com/phrazzld/scry-quest/internal/mocks"
	"github.com/phrazzld/scry-quest/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waterAnswer    = "The water moves through the air and goes into rivers with evaporation"
	waterReference = "Water evaporates, condenses into clouds and returns as precipitation"
)

// reviewCatalog puts a reviews challenge in every daily draw.
var reviewCatalog = []domain.ChallengeTemplate{
	{ID: "reviews-5", Title: "Write 5 graded answers", Target: 5, CoinReward: 40, XPReward: 25, ChestTier: domain.ChestTierSilver},
	domain.DefaultChallengeCatalog[0],
	domain.DefaultChallengeCatalog[3],
}

func newReviewService(t *testing.T, h *harness, g grading.Grader) service.ReviewService {
	t.Helper()
	svc, err := service.NewReviewService(g, h.uow, h.opts, nil)
	require.NoError(t, err)
	return svc
}

func TestSubmitReviewSegmentsBothAnswers(t *testing.T) {
	t.Parallel()
	h := newHarness(t, reviewCatalog)
	grader := mocks.NewMockGraderWithFeedback(&domain.Feedback{
		CorrectParts:   []string{"water moves", "evaporation", "not in the answer"},
		IncorrectParts: []string{"into rivers", ""},
		MissingPoints:  []string{"condenses into clouds"},
		Explanation:    "Partly right.",
	})
	svc := newReviewService(t, h, grader)
	userID := uuid.New()

	res, err := svc.SubmitReview(context.Background(), userID, service.ReviewInput{
		Question:        "Describe the water cycle",
		ReferenceAnswer: waterReference,
		UserAnswer:      waterAnswer,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"water moves", "evaporation"}, res.Feedback.CorrectParts)
	assert.Equal(t, []string{"into rivers"}, res.Feedback.IncorrectParts)
	assert.Equal(t, []domain.AnswerSegment{
		{Text: "The ", Type: domain.SegmentNone},
		{Text: "water moves", Type: domain.SegmentCorrect},
		{Text: " through the air and goes ", Type: domain.SegmentNone},
		{Text: "into rivers", Type: domain.SegmentIncorrect},
		{Text: " with ", Type: domain.SegmentNone},
		{Text: "evaporation", Type: domain.SegmentCorrect},
	}, res.UserSegments)
	assert.Equal(t, waterReference, segment.Reconstruct(res.ReferenceSegments))
	assert.Contains(t, res.ReferenceSegments, domain.AnswerSegment{Text: "condenses into clouds", Type: domain.SegmentMissing})

	require.Len(t, res.Challenges, 3)
	assert.Equal(t, "reviews-5", res.Challenges[0].ID)
	assert.Equal(t, 1, res.Challenges[0].Progress)

	stored, err := h.uow.Challenges.Load(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, res.Challenges, stored)

	require.Equal(t, 1, grader.Calls())
	assert.Equal(t, "Describe the water cycle", grader.Requests()[0].Question)
}

func TestSubmitReviewGraderFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "transient failure",
			err:     fmt.Errorf("%w: exceeded maximum retry attempts (3)", grading.ErrTransientFailure),
			wantErr: service.ErrGradingUnavailable,
		},
		{
			name:    "content blocked",
			err:     grading.ErrContentBlocked,
			wantErr: service.ErrGradingUnavailable,
		},
		{
			name:    "blank answer",
			err:     grading.ErrEmptyAnswer,
			wantErr: service.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, reviewCatalog)
			svc := newReviewService(t, h, mocks.NewMockGraderWithError(tt.err))
			userID := uuid.New()

			res, err := svc.SubmitReview(context.Background(), userID, service.ReviewInput{
				ReferenceAnswer: waterReference,
				UserAnswer:      "   ",
			})
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.err)

			set, err := h.uow.Challenges.Load(context.Background(), userID)
			require.NoError(t, err)
			assert.Empty(t, set)
		})
	}
}

func TestSubmitReviewValidation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, reviewCatalog)
	grader := &mocks.MockGrader{}
	svc := newReviewService(t, h, grader)

	_, err := svc.SubmitReview(context.Background(), uuid.New(), service.ReviewInput{ReferenceAnswer: "x"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Zero(t, grader.Calls())
}

func TestSubmitReviewChallengeFailureStillReturnsFeedback(t *testing.T) {
	t.Parallel()
	h := newHarness(t, reviewCatalog)
	h.uow.Challenges.LoadErr = errors.New("down")
	svc := newReviewService(t, h, mocks.NewMockGraderWithFeedback(&domain.Feedback{
		CorrectParts: []string{"water"},
	}))

	res, err := svc.SubmitReview(context.Background(), uuid.New(), service.ReviewInput{
		ReferenceAnswer: "water",
		UserAnswer:      "water",
	})
	require.NoError(t, err)
	assert.Nil(t, res.Challenges)
	assert.Equal(t, []domain.AnswerSegment{{Text: "water", Type: domain.SegmentCorrect}}, res.UserSegments)
}

func TestSubmitReviewNilFeedback(t *testing.T) {
	t.Parallel()
	h := newHarness(t, reviewCatalog)
	svc := newReviewService(t, h, &mocks.MockGrader{})

	res, err := svc.SubmitReview(context.Background(), uuid.New(), service.ReviewInput{
		ReferenceAnswer: "ref",
		UserAnswer:      "answer",
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.AnswerSegment{{Text: "answer", Type: domain.SegmentNone}}, res.UserSegments)
}
