package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-quest/internal/api/shared"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/service"
)

// ChallengeHandler handles daily challenge HTTP requests
type ChallengeHandler struct {
	challenges service.ChallengeService
	logger     *slog.Logger
}

// NewChallengeHandler creates a new ChallengeHandler
func NewChallengeHandler(challenges service.ChallengeService, logger *slog.Logger) *ChallengeHandler {
	if challenges == nil {
		panic("challenge service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChallengeHandler{
		challenges: challenges,
		logger:     logger.With(slog.String("component", "challenge_handler")),
	}
}

// GetChallenges handles GET /api/challenges requests
func (h *ChallengeHandler) GetChallenges(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	set, err := h.challenges.GetDailyChallenges(r.Context(), userID, requestTimezone(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load challenges")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ChallengesResponse{Challenges: set})
}

// ClaimReward handles POST /api/challenges/{id}/claim requests
func (h *ChallengeHandler) ClaimReward(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req ClaimRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	if req.Timezone == "" {
		req.Timezone = requestTimezone(r)
	}

	result, err := h.challenges.ClaimReward(r.Context(), userID, service.ClaimInput{
		ChallengeID: chi.URLParam(r, "id"),
		Timezone:    req.Timezone,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to claim reward")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
