package domain

import "fmt"

// AchievementType selects the metric an achievement tier is measured against.
type AchievementType string

// Achievement types
const (
	AchievementFlashcards AchievementType = "flashcards"
	AchievementStreak     AchievementType = "streak"
	AchievementSessions   AchievementType = "sessions"
	AchievementTime       AchievementType = "time"
	AchievementChallenges AchievementType = "challenges"
	AchievementNightOwl   AchievementType = "night-owl"
	AchievementCustomizer AchievementType = "customizer"
)

// AchievementTier is an immutable, one-time unlockable milestone.
// Threshold units depend on Type: cards, days, sessions or seconds.
type AchievementTier struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Threshold   float64         `json:"threshold"`
	Type        AchievementType `json:"type"`
}

// DefaultAchievementTiers is the achievement catalog.
var DefaultAchievementTiers = []AchievementTier{
	{ID: "deck-builder", Title: "Deck Builder", Description: "Review your first card", Threshold: 1, Type: AchievementFlashcards},
	{ID: "card-collector", Title: "Card Collector", Description: "Review 50 cards", Threshold: 50, Type: AchievementFlashcards},
	{ID: "knowledge-seeker", Title: "Knowledge Seeker", Description: "Review 250 cards", Threshold: 250, Type: AchievementFlashcards},
	{ID: "scholar", Title: "Scholar", Description: "Review 1000 cards", Threshold: 1000, Type: AchievementFlashcards},

	{ID: "streak-starter", Title: "Streak Starter", Description: "Study 3 days in a row", Threshold: 3, Type: AchievementStreak},
	{ID: "week-warrior", Title: "Week Warrior", Description: "Study 7 days in a row", Threshold: 7, Type: AchievementStreak},
	{ID: "monthly-master", Title: "Monthly Master", Description: "Study 30 days in a row", Threshold: 30, Type: AchievementStreak},

	{ID: "first-steps", Title: "First Steps", Description: "Complete a study session", Threshold: 1, Type: AchievementSessions},
	{ID: "dedicated-learner", Title: "Dedicated Learner", Description: "Complete 10 study sessions", Threshold: 10, Type: AchievementSessions},
	{ID: "study-marathon", Title: "Study Marathon", Description: "Complete 50 study sessions", Threshold: 50, Type: AchievementSessions},

	{ID: "hour-of-power", Title: "Hour of Power", Description: "Study for 1 hour in total", Threshold: 3600, Type: AchievementTime},
	{ID: "focused-mind", Title: "Focused Mind", Description: "Study for 5 hours in total", Threshold: 18000, Type: AchievementTime},
	{ID: "time-lord", Title: "Time Lord", Description: "Study for 10 hours in total", Threshold: 36000, Type: AchievementTime},

	{ID: "challenge-champion", Title: "Challenge Champion", Description: "Complete and claim every daily challenge", Threshold: 0, Type: AchievementChallenges},
	{ID: "night-owl", Title: "Night Owl", Description: "Study between midnight and 5am", Threshold: 0, Type: AchievementNightOwl},
	{ID: "interior-designer", Title: "Interior Designer", Description: "Place your first decoration", Threshold: 0, Type: AchievementCustomizer},
}

// FindAchievementTier looks up a tier by id in the given catalog.
func FindAchievementTier(tiers []AchievementTier, id string) (AchievementTier, error) {
	for _, t := range tiers {
		if t.ID == id {
			return t, nil
		}
	}
	return AchievementTier{}, fmt.Errorf("%w: %s", ErrUnknownAchievement, id)
}
