package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-quest/internal/api/shared"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/service"
)

// ReviewHandler handles graded answer HTTP requests
type ReviewHandler struct {
	reviews service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviews service.ReviewService, logger *slog.Logger) *ReviewHandler {
	if reviews == nil {
		panic("review service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "review_handler")),
	}
}

// SubmitReview handles POST /api/reviews requests. Grading failures are
// reported as 502 Bad Gateway.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req service.ReviewInput
	if !decodeBody(w, r, &req, false) {
		return
	}
	if req.Timezone == "" {
		req.Timezone = requestTimezone(r)
	}

	result, err := h.reviews.SubmitReview(r.Context(), userID, req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to grade answer")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
