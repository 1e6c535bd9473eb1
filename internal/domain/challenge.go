package domain

import (
	"fmt"
	"time"
)

// ChestTier is the reward chest granted alongside a challenge's coins and XP.
type ChestTier string

// Chest tiers, in ascending value
const (
	ChestTierBronze ChestTier = "bronze"
	ChestTierSilver ChestTier = "silver"
	ChestTierGold   ChestTier = "gold"
)

// Challenge categories. A challenge id is "<category>-<target>", and progress
// updates address a whole category by its prefix.
const (
	ChallengeCategoryCards    = "cards"
	ChallengeCategorySessions = "sessions"
	ChallengeCategoryMinutes  = "minutes"
	ChallengeCategoryReviews  = "reviews"
)

// ChallengeTemplate is the immutable definition of a daily challenge.
type ChallengeTemplate struct {
	ID         string    `json:"id" db:"challenge_id"`
	Title      string    `json:"title" db:"-"`
	Target     int       `json:"target" db:"-"`
	CoinReward int       `json:"coin_reward" db:"-"`
	XPReward   int       `json:"xp_reward" db:"-"`
	ChestTier  ChestTier `json:"chest_tier" db:"-"`
}

// Challenge is a template combined with one day's mutable state.
// Progress never exceeds Target; IsCompleted holds exactly when
// Progress >= Target; IsClaimed implies IsCompleted.
type Challenge struct {
	ChallengeTemplate
	Progress    int       `json:"progress" db:"progress"`
	IsCompleted bool      `json:"is_completed" db:"is_completed"`
	IsClaimed   bool      `json:"is_claimed" db:"is_claimed"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// NewChallenge starts a challenge from its template with zero progress.
func NewChallenge(t ChallengeTemplate, now time.Time) Challenge {
	return Challenge{
		ChallengeTemplate: t,
		LastUpdated:       now,
	}
}

// Validate checks the completion and claim invariants.
func (c Challenge) Validate() error {
	if c.Target <= 0 {
		return fmt.Errorf("%w: challenge %q has non-positive target", ErrValidation, c.ID)
	}
	if c.Progress < 0 || c.Progress > c.Target {
		return fmt.Errorf("%w: challenge %q progress %d outside [0, %d]", ErrValidation, c.ID, c.Progress, c.Target)
	}
	if c.IsCompleted != (c.Progress >= c.Target) {
		return fmt.Errorf("%w: challenge %q completion flag out of sync", ErrValidation, c.ID)
	}
	if c.IsClaimed && !c.IsCompleted {
		return fmt.Errorf("%w: challenge %q claimed before completion", ErrValidation, c.ID)
	}
	return nil
}

// DefaultChallengeCatalog is the pool the daily challenge set is drawn from.
var DefaultChallengeCatalog = []ChallengeTemplate{
	{ID: "cards-10", Title: "Review 10 cards", Target: 10, CoinReward: 20, XPReward: 15, ChestTier: ChestTierBronze},
	{ID: "cards-25", Title: "Review 25 cards", Target: 25, CoinReward: 50, XPReward: 30, ChestTier: ChestTierSilver},
	{ID: "cards-50", Title: "Review 50 cards", Target: 50, CoinReward: 100, XPReward: 60, ChestTier: ChestTierGold},
	{ID: "sessions-1", Title: "Complete a study session", Target: 1, CoinReward: 15, XPReward: 10, ChestTier: ChestTierBronze},
	{ID: "sessions-3", Title: "Complete 3 study sessions", Target: 3, CoinReward: 60, XPReward: 40, ChestTier: ChestTierSilver},
	{ID: "minutes-10", Title: "Study for 10 minutes", Target: 10, CoinReward: 30, XPReward: 20, ChestTier: ChestTierBronze},
	{ID: "minutes-30", Title: "Study for 30 minutes", Target: 30, CoinReward: 80, XPReward: 50, ChestTier: ChestTierGold},
	{ID: "reviews-5", Title: "Write 5 graded answers", Target: 5, CoinReward: 40, XPReward: 25, ChestTier: ChestTierSilver},
}

// FindChallengeTemplate looks up a template by id in the given catalog.
func FindChallengeTemplate(catalog []ChallengeTemplate, id string) (ChallengeTemplate, error) {
	for _, t := range catalog {
		if t.ID == id {
			return t, nil
		}
	}
	return ChallengeTemplate{}, fmt.Errorf("%w: %s", ErrUnknownChallenge, id)
}
