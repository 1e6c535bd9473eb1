package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-quest/internal/api/shared"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/service"
)

// AchievementHandler handles achievement HTTP requests
type AchievementHandler struct {
	achievements service.AchievementService
	logger       *slog.Logger
}

// NewAchievementHandler creates a new AchievementHandler
func NewAchievementHandler(achievements service.AchievementService, logger *slog.Logger) *AchievementHandler {
	if achievements == nil {
		panic("achievement service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AchievementHandler{
		achievements: achievements,
		logger:       logger.With(slog.String("component", "achievement_handler")),
	}
}

// ListAchievements handles GET /api/achievements requests
func (h *AchievementHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	list, err := h.achievements.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load achievements")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AchievementsResponse{Achievements: list})
}

// EvaluateAchievements handles POST /api/achievements/evaluate requests
func (h *AchievementHandler) EvaluateAchievements(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req service.EvaluateInput
	if !decodeBody(w, r, &req, true) {
		return
	}
	if req.Timezone == "" {
		req.Timezone = requestTimezone(r)
	}

	unlocked, err := h.achievements.Evaluate(r.Context(), userID, req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to evaluate achievements")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, EvaluateResponse{UnlockedAchievements: unlocked})
}
