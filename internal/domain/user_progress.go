package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Default values for a freshly created progress record.
const (
	DefaultLevel  = 1
	DefaultStreak = 1
)

// Common validation errors for UserProgress
var (
	ErrEmptyProgressUserID  = errors.New("user progress user ID cannot be empty")
	ErrNegativeXP           = errors.New("experience points cannot be negative")
	ErrInvalidLevel         = errors.New("level must be at least 1")
	ErrNegativeStreak       = errors.New("streak cannot be negative")
	ErrNegativeProgressStat = errors.New("progress counters cannot be negative")
)

// UserProgress tracks a user's gamified progression: experience, level,
// daily streak, coin balance and cumulative study totals.
type UserProgress struct {
	UserID                 uuid.UUID `json:"user_id" db:"user_id"`
	ExperiencePoints       int       `json:"experience_points" db:"experience_points"` // XP accumulated towards the next level
	Level                  int       `json:"level" db:"level"`
	Streak                 int       `json:"streak" db:"streak"`
	Coins                  int       `json:"coins" db:"coins"`
	TotalCardsReviewed     int       `json:"total_cards_reviewed" db:"total_cards_reviewed"`
	TotalSessionsCompleted int       `json:"total_sessions_completed" db:"total_sessions_completed"`
	TimeSpentSeconds       int       `json:"time_spent_seconds" db:"time_spent_seconds"`
	LastActivityAt         time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time `json:"updated_at" db:"updated_at"`
}

// NewUserProgress creates a progress record with account-creation defaults:
// no experience, level 1 and a streak of 1 anchored at now.
func NewUserProgress(userID uuid.UUID, now time.Time) (*UserProgress, error) {
	progress := &UserProgress{
		UserID:         userID,
		Level:          DefaultLevel,
		Streak:         DefaultStreak,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the UserProgress has valid data.
// Returns an error if any field fails validation.
func (p *UserProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}

	if p.ExperiencePoints < 0 {
		return ErrNegativeXP
	}

	if p.Level < 1 {
		return ErrInvalidLevel
	}

	if p.Streak < 0 {
		return ErrNegativeStreak
	}

	if p.Coins < 0 || p.TotalCardsReviewed < 0 || p.TotalSessionsCompleted < 0 || p.TimeSpentSeconds < 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrNegativeProgressStat)
	}

	return nil
}

// Clone returns a copy of the progress record. Services mutate the copy and
// persist it, leaving the loaded value untouched.
func (p *UserProgress) Clone() *UserProgress {
	c := *p
	return &c
}
