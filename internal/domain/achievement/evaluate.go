// Package achievement decides which achievement tiers a user's cumulative
// metrics have crossed and records each unlock exactly once.
package achievement

import (
	"sort"

	"github.com/phrazzld/scry-quest/internal/domain"
)

// nightOwlEndHour is the exclusive upper bound of the night-owl window.
const nightOwlEndHour = 5

// ChallengeStatus is the claim state of one of the day's challenges.
type ChallengeStatus struct {
	IsCompleted bool `json:"is_completed"`
	IsClaimed   bool `json:"is_claimed"`
}

// StatusesOf extracts claim state from a daily challenge set.
func StatusesOf(challenges []domain.Challenge) []ChallengeStatus {
	out := make([]ChallengeStatus, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, ChallengeStatus{IsCompleted: c.IsCompleted, IsClaimed: c.IsClaimed})
	}
	return out
}

// Metrics are the cumulative values achievement predicates are tested against.
// Nil optional fields leave their category unevaluated.
type Metrics struct {
	TotalCards       int
	CurrentStreak    *int
	TotalSessions    *int
	TimeSpentSeconds *int
	DailyChallenges  []ChallengeStatus
	NowHour          int
	DecorationsCount *int
}

// UnlockSet is the set of achievement ids a user has unlocked.
type UnlockSet map[string]struct{}

// NewUnlockSet builds a set from ids.
func NewUnlockSet(ids ...string) UnlockSet {
	s := make(UnlockSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is unlocked.
func (s UnlockSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set holding the ids of s and ids.
func (s UnlockSet) Union(ids ...string) UnlockSet {
	out := make(UnlockSet, len(s)+len(ids))
	for id := range s {
		out[id] = struct{}{}
	}
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the ids in sorted order.
func (s UnlockSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Evaluate returns the ids of tiers whose predicate holds for m and that are
// not yet in unlocked, in catalog order. It has no side effects.
func Evaluate(m Metrics, unlocked UnlockSet, tiers []domain.AchievementTier) []string {
	var newly []string
	for _, tier := range tiers {
		if unlocked.Has(tier.ID) {
			continue
		}
		if satisfied(tier, m) {
			newly = append(newly, tier.ID)
		}
	}
	return newly
}

func satisfied(tier domain.AchievementTier, m Metrics) bool {
	switch tier.Type {
	case domain.AchievementFlashcards:
		return float64(m.TotalCards) >= tier.Threshold
	case domain.AchievementStreak:
		return atLeast(m.CurrentStreak, tier.Threshold)
	case domain.AchievementSessions:
		return atLeast(m.TotalSessions, tier.Threshold)
	case domain.AchievementTime:
		return atLeast(m.TimeSpentSeconds, tier.Threshold)
	case domain.AchievementChallenges:
		return allClaimed(m.DailyChallenges)
	case domain.AchievementNightOwl:
		return m.NowHour >= 0 && m.NowHour < nightOwlEndHour
	case domain.AchievementCustomizer:
		return m.DecorationsCount != nil && float64(*m.DecorationsCount) > tier.Threshold
	default:
		return false
	}
}

func atLeast(v *int, threshold float64) bool {
	return v != nil && float64(*v) >= threshold
}

func allClaimed(challenges []ChallengeStatus) bool {
	if len(challenges) == 0 {
		return false
	}
	for _, c := range challenges {
		if !c.IsCompleted || !c.IsClaimed {
			return false
		}
	}
	return true
}
