package progression

import (
	"time"
)

// Service defines the interface for progression calculations
type Service interface {
	// XPRequiredForLevel returns the experience needed to advance past level.
	XPRequiredForLevel(level int) int

	// ResolveLevelFromXP applies at most one level-up to accumulated experience.
	ResolveLevelFromXP(accumulatedXP int, currentLevel int) LevelResult

	// XPForSession computes the capped experience for a study session.
	XPForSession(totalCards int, durationSeconds float64) int

	// NextStreak computes the daily streak after activity at now.
	NextStreak(lastActivity time.Time, currentStreak int, now time.Time) int

	// SameDay reports whether two instants fall on the same calendar day in now's location.
	SameDay(t time.Time, now time.Time) bool
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new progression service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new progression service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

func (s *defaultService) XPRequiredForLevel(level int) int {
	return xpRequiredForLevel(level, s.params)
}

func (s *defaultService) ResolveLevelFromXP(accumulatedXP int, currentLevel int) LevelResult {
	return resolveLevelFromXP(accumulatedXP, currentLevel, s.params)
}

func (s *defaultService) XPForSession(totalCards int, durationSeconds float64) int {
	return xpForSession(totalCards, durationSeconds, s.params)
}

func (s *defaultService) NextStreak(lastActivity time.Time, currentStreak int, now time.Time) int {
	return nextStreak(lastActivity, currentStreak, now)
}

func (s *defaultService) SameDay(t time.Time, now time.Time) bool {
	return sameCalendarDay(t, now)
}

var defaultParams = NewDefaultParams()

// XPRequiredForLevel returns round(100 * level^1.3), the default threshold.
func XPRequiredForLevel(level int) int {
	return xpRequiredForLevel(level, defaultParams)
}

// ResolveLevelFromXP resolves experience against the default level curve.
func ResolveLevelFromXP(accumulatedXP int, currentLevel int) LevelResult {
	return resolveLevelFromXP(accumulatedXP, currentLevel, defaultParams)
}

// XPForSession returns min(round(cards*1.2 + minutes*2), 100).
func XPForSession(totalCards int, durationSeconds float64) int {
	return xpForSession(totalCards, durationSeconds, defaultParams)
}

// NextStreak computes the daily streak after activity at now.
func NextStreak(lastActivity time.Time, currentStreak int, now time.Time) int {
	return nextStreak(lastActivity, currentStreak, now)
}
