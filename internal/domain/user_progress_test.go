package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewUserProgress(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	progress, err := NewUserProgress(userID, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if progress.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, progress.UserID)
	}
	if progress.ExperiencePoints != 0 {
		t.Errorf("Expected 0 XP, got %d", progress.ExperiencePoints)
	}
	if progress.Level != 1 {
		t.Errorf("Expected level 1, got %d", progress.Level)
	}
	if progress.Streak != 1 {
		t.Errorf("Expected streak 1, got %d", progress.Streak)
	}
	if !progress.LastActivityAt.Equal(now) {
		t.Errorf("Expected last activity %v, got %v", now, progress.LastActivityAt)
	}

	if _, err := NewUserProgress(uuid.Nil, now); !errors.Is(err, ErrEmptyProgressUserID) {
		t.Errorf("Expected error %v, got %v", ErrEmptyProgressUserID, err)
	}
}

func TestUserProgressValidate(t *testing.T) {
	t.Parallel()

	valid := func() UserProgress {
		return UserProgress{UserID: uuid.New(), Level: 1, Streak: 1}
	}

	testCases := []struct {
		name    string
		mutate  func(p *UserProgress)
		wantErr error
	}{
		{name: "valid", mutate: func(p *UserProgress) {}},
		{name: "negative xp", mutate: func(p *UserProgress) { p.ExperiencePoints = -1 }, wantErr: ErrNegativeXP},
		{name: "level zero", mutate: func(p *UserProgress) { p.Level = 0 }, wantErr: ErrInvalidLevel},
		{name: "negative streak", mutate: func(p *UserProgress) { p.Streak = -2 }, wantErr: ErrNegativeStreak},
		{name: "zero streak allowed", mutate: func(p *UserProgress) { p.Streak = 0 }},
		{name: "negative coins", mutate: func(p *UserProgress) { p.Coins = -5 }, wantErr: ErrNegativeProgressStat},
		{name: "negative time", mutate: func(p *UserProgress) { p.TimeSpentSeconds = -1 }, wantErr: ErrValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid()
			tc.mutate(&p)
			err := p.Validate()
			if tc.wantErr == nil && err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestUserProgressClone(t *testing.T) {
	t.Parallel()

	original := &UserProgress{UserID: uuid.New(), Level: 3, ExperiencePoints: 40}
	clone := original.Clone()
	clone.Level = 4

	if original.Level != 3 {
		t.Errorf("Expected original level to stay 3, got %d", original.Level)
	}
}
