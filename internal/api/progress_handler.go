package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-quest/internal/api/shared"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/service"
)

// ProgressHandler handles progression HTTP requests
type ProgressHandler struct {
	progression service.ProgressionService
	logger      *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(progression service.ProgressionService, logger *slog.Logger) *ProgressHandler {
	if progression == nil {
		panic("progression service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		progression: progression,
		logger:      logger.With(slog.String("component", "progress_handler")),
	}
}

// GetProgress handles GET /api/progress requests
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	snapshot, err := h.progression.GetProgress(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}

// CompleteSession handles POST /api/sessions requests
func (h *ProgressHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req service.SessionInput
	if !decodeBody(w, r, &req, false) {
		return
	}
	if req.Timezone == "" {
		req.Timezone = requestTimezone(r)
	}

	result, err := h.progression.CompleteSession(r.Context(), userID, req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
