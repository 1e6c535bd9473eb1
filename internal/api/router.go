package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	apimiddleware "github.com/phrazzld/scry-quest/internal/api/middleware"
	"github.com/phrazzld/scry-quest/internal/api/shared"
)

// RouterConfig holds the handlers and middleware the router wires together.
type RouterConfig struct {
	Auth         *apimiddleware.AuthMiddleware
	Progress     *ProgressHandler
	Challenges   *ChallengeHandler
	Achievements *AchievementHandler
	Reviews      *ReviewHandler
	Logger       *slog.Logger
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.NewTraceMiddleware(cfg.Logger))

	r.Get("/health", Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(cfg.Auth.Authenticate)

		r.Get("/progress", cfg.Progress.GetProgress)
		r.Post("/sessions", cfg.Progress.CompleteSession)

		r.Get("/challenges", cfg.Challenges.GetChallenges)
		r.Post("/challenges/{id}/claim", cfg.Challenges.ClaimReward)

		r.Get("/achievements", cfg.Achievements.ListAchievements)
		r.Post("/achievements/evaluate", cfg.Achievements.EvaluateAchievements)

		r.Post("/reviews", cfg.Reviews.SubmitReview)
	})

	return r
}

// Health handles GET /health requests.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}
