package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names an event.
type Type string

// Event types.
const (
	TypeSessionCompleted     Type = "session.completed"
	TypeLevelUp              Type = "progress.level_up"
	TypeChallengeClaimed     Type = "challenge.claimed"
	TypeAchievementsUnlocked Type = "achievements.unlocked"
)

// Event is a fact about a user's progression.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       Type            `json:"type"`
	UserID     uuid.UUID       `json:"user_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// SessionCompleted is the payload of TypeSessionCompleted.
type SessionCompleted struct {
	TotalCards      int `json:"total_cards"`
	DurationSeconds int `json:"duration_seconds"`
	XPEarned        int `json:"xp_earned"`
	Level           int `json:"level"`
	Streak          int `json:"streak"`
}

// LevelUp is the payload of TypeLevelUp.
type LevelUp struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ChallengeClaimed is the payload of TypeChallengeClaimed.
type ChallengeClaimed struct {
	ChallengeID string `json:"challenge_id"`
	Coins       int    `json:"coins"`
	XP          int    `json:"xp"`
}

// AchievementsUnlocked is the payload of TypeAchievementsUnlocked.
type AchievementsUnlocked struct {
	IDs []string `json:"ids"`
}

// New creates an event with a fresh ID and payload serialized as JSON.
func New(t Type, userID uuid.UUID, payload interface{}, at time.Time) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:         uuid.New(),
		Type:       t,
		UserID:     userID,
		Payload:    raw,
		OccurredAt: at,
	}, nil
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Handler processes events.
type Handler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements Handler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Emitter publishes events to handlers.
type Emitter interface {
	Emit(ctx context.Context, event *Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// Emit implements Emitter.
func (NopEmitter) Emit(context.Context, *Event) error { return nil }
