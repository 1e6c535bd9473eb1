// Package challenge tracks a user's daily challenge set: the random draw of
// the day's challenges, progress counters, completion and reward claims.
//
// The Tracker performs no I/O. Callers load the persisted set through a Store,
// apply operations, and save the set after every mutating call.
package challenge

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
)

// DailySetSize is the number of challenges drawn per calendar day.
const DailySetSize = 3

// Source supplies random integers in [0, n). *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Store persists a user's active challenge set between requests.
type Store interface {
	// Load returns the persisted set, or an empty slice if none exists.
	Load(ctx context.Context, userID uuid.UUID) ([]domain.Challenge, error)

	// Save replaces the persisted set with the given challenges.
	Save(ctx context.Context, userID uuid.UUID, challenges []domain.Challenge) error
}

// Tracker holds one user's active challenge set and applies the state machine
// NotStarted -> InProgress -> Completed -> Claimed to it.
type Tracker struct {
	catalog    []domain.ChallengeTemplate
	rng        Source
	challenges []domain.Challenge
}

// NewTracker creates a Tracker over the given catalog and random source,
// starting from a previously persisted set (which may be empty).
func NewTracker(catalog []domain.ChallengeTemplate, rng Source, active []domain.Challenge) *Tracker {
	if len(catalog) == 0 {
		catalog = domain.DefaultChallengeCatalog
	}
	challenges := make([]domain.Challenge, len(active))
	copy(challenges, active)
	return &Tracker{
		catalog:    catalog,
		rng:        rng,
		challenges: challenges,
	}
}

// Challenges returns a copy of the active set.
func (t *Tracker) Challenges() []domain.Challenge {
	out := make([]domain.Challenge, len(t.challenges))
	copy(out, t.challenges)
	return out
}

// ShouldReset reports whether the active set is empty or was last updated on
// a different calendar day than now (in now's location).
func (t *Tracker) ShouldReset(now time.Time) bool {
	if len(t.challenges) == 0 {
		return true
	}
	return !sameDay(t.challenges[0].LastUpdated, now)
}

// InitializeDailySet replaces the active set with a uniform random sample of
// DailySetSize templates drawn without replacement from the catalog.
func (t *Tracker) InitializeDailySet(now time.Time) []domain.Challenge {
	drawn := Sample(t.catalog, DailySetSize, t.rng)

	t.challenges = make([]domain.Challenge, 0, len(drawn))
	for _, tmpl := range drawn {
		t.challenges = append(t.challenges, domain.NewChallenge(tmpl, now))
	}
	return t.Challenges()
}

// UpdateProgress adds delta to every active challenge addressed by key: the
// challenge whose id equals key, or every challenge whose id starts with
// key + "-" (a whole category such as "cards"). Progress is clamped at the
// target and completion is recomputed. Keys matching nothing are ignored.
// It reports whether any challenge changed.
func (t *Tracker) UpdateProgress(key string, delta int, now time.Time) bool {
	if delta == 0 {
		return false
	}

	changed := false
	for i := range t.challenges {
		c := &t.challenges[i]
		if !matches(c.ID, key) {
			continue
		}

		next := c.Progress + delta
		if next > c.Target {
			next = c.Target
		}
		if next < 0 {
			next = 0
		}
		if next == c.Progress {
			continue
		}

		c.Progress = next
		c.IsCompleted = c.Progress >= c.Target
		c.LastUpdated = now
		changed = true
	}
	return changed
}

// ClaimReward marks a completed challenge as claimed. It returns the claimed
// challenge and true only on the transition to claimed; claiming an unknown,
// unfinished or already claimed challenge is a no-op returning false.
func (t *Tracker) ClaimReward(id string, now time.Time) (domain.Challenge, bool) {
	for i := range t.challenges {
		c := &t.challenges[i]
		if c.ID != id {
			continue
		}
		if !c.IsCompleted || c.IsClaimed {
			return *c, false
		}
		c.IsClaimed = true
		c.LastUpdated = now
		return *c, true
	}
	return domain.Challenge{}, false
}

// Sample draws n templates without replacement using a Fisher-Yates shuffle
// of a copy of the catalog and taking the first n. If the catalog is smaller
// than n, the whole shuffled catalog is returned.
func Sample(catalog []domain.ChallengeTemplate, n int, rng Source) []domain.ChallengeTemplate {
	shuffled := make([]domain.ChallengeTemplate, len(catalog))
	copy(shuffled, catalog)

	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

func matches(id, key string) bool {
	return id == key || strings.HasPrefix(id, key+"-")
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
