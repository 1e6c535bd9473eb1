package progression

import (
	"math"
	"time"
)

// LevelResult is the outcome of resolving accumulated experience against a level.
type LevelResult struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

// LeveledUp reports whether the result moved past the given starting level.
func (r LevelResult) LeveledUp(from int) bool {
	return r.Level > from
}

// xpRequiredForLevel returns the experience needed to advance past level.
//
// The threshold grows polynomially: round(LevelBaseXP * level^LevelExponent),
// which with default params gives 100 for level 1, 246 for level 2 and 417
// for level 3. The curve is strictly increasing for level >= 1.
func xpRequiredForLevel(level int, params *Params) int {
	return int(math.Round(params.LevelBaseXP * math.Pow(float64(level), params.LevelExponent)))
}

// resolveLevelFromXP applies at most one level-up.
//
// If accumulatedXP reaches the threshold of currentLevel, the level advances
// by one and the threshold is subtracted from the experience. Experience that
// exceeds two consecutive thresholds is carried over as-is rather than
// cascading into further level-ups within the same call. Inputs are not
// validated.
func resolveLevelFromXP(accumulatedXP int, currentLevel int, params *Params) LevelResult {
	threshold := xpRequiredForLevel(currentLevel, params)
	if accumulatedXP >= threshold {
		return LevelResult{Level: currentLevel + 1, XP: accumulatedXP - threshold}
	}
	return LevelResult{Level: currentLevel, XP: accumulatedXP}
}

// xpForSession computes the experience awarded for a completed study session
// from the number of cards reviewed and its duration, rounded and capped at
// params.SessionXPCap.
func xpForSession(totalCards int, durationSeconds float64, params *Params) int {
	raw := float64(totalCards)*params.XPPerCard + (durationSeconds/60)*params.XPPerMinute
	xp := int(math.Round(raw))
	if xp > params.SessionXPCap {
		return params.SessionXPCap
	}
	return xp
}

// calendarDaysBetween returns the number of calendar days from a to b, with
// both instants read in b's location and time of day ignored. Civil dates are
// compared in UTC so that DST transitions never produce fractional days.
func calendarDaysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// nextStreak computes the streak after activity at now.
//
// Same calendar day keeps the streak, the following day extends it by one,
// and any larger gap resets it to 1. A last activity that lies in the future
// (device clock rolled back) also resets to 1.
func nextStreak(lastActivity time.Time, currentStreak int, now time.Time) int {
	switch diff := calendarDaysBetween(lastActivity, now); {
	case diff == 0:
		return currentStreak
	case diff == 1:
		return currentStreak + 1
	default:
		return 1
	}
}

// sameCalendarDay reports whether a and b fall on the same civil date in b's location.
func sameCalendarDay(a, b time.Time) bool {
	return calendarDaysBetween(a, b) == 0
}
