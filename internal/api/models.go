package api

import (
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/service"
)

// Request bodies for POST /sessions, POST /achievements/evaluate and
// POST /reviews are the service inputs: service.SessionInput,
// service.EvaluateInput and service.ReviewInput.

// ClaimRequest is the optional body of POST /challenges/{id}/claim.
type ClaimRequest struct {
	Timezone string `json:"timezone,omitempty"`
}

// ChallengesResponse is the body of GET /challenges.
type ChallengesResponse struct {
	Challenges []domain.Challenge `json:"challenges"`
}

// AchievementsResponse is the body of GET /achievements.
type AchievementsResponse struct {
	Achievements []service.AchievementStatus `json:"achievements"`
}

// EvaluateResponse is the body of POST /achievements/evaluate.
type EvaluateResponse struct {
	UnlockedAchievements []string `json:"unlocked_achievements"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
