package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/challenge"
	"github.com/phrazzld/scry-quest/internal/domain/progression"
	"github.com/phrazzld/scry-quest/internal/events"
)

var validate = validator.New()

// validateInput runs struct validation and wraps failures in ErrInvalidInput.
func validateInput(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// Options carries the settings shared by the services. Zero values select
// defaults: the default level curve and challenge catalog, a clock-seeded
// random source, UTC, time.Now and an emitter that discards events.
type Options struct {
	Progression     progression.Service
	Catalog         []domain.ChallengeTemplate
	Source          challenge.Source
	DefaultLocation *time.Location
	Now             func() time.Time
	Events          events.Emitter
}

func (o Options) withDefaults() Options {
	if o.Progression == nil {
		o.Progression = progression.NewDefaultService()
	}
	if len(o.Catalog) == 0 {
		o.Catalog = domain.DefaultChallengeCatalog
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Source == nil {
		o.Source = challenge.NewSource(o.Now().UnixNano())
	}
	if o.DefaultLocation == nil {
		o.DefaultLocation = time.UTC
	}
	if o.Events == nil {
		o.Events = events.NopEmitter{}
	}
	return o
}

// localNow returns the current time in the named zone, or in the default
// location when name is empty. Names are validated before this is called.
func (o Options) localNow(name string) time.Time {
	loc := o.DefaultLocation
	if name != "" {
		if l, err := time.LoadLocation(name); err == nil {
			loc = l
		}
	}
	return o.Now().In(loc)
}

// needsReset reports whether set belongs to an earlier day than now, without
// drawing a new set.
func (o Options) needsReset(set []domain.Challenge, now time.Time) bool {
	return challenge.NewTracker(o.Catalog, o.Source, set).ShouldReset(now)
}

// dailyTracker builds a tracker over set, replacing it with a fresh draw when
// it belongs to an earlier day. It reports whether a reset happened.
func (o Options) dailyTracker(set []domain.Challenge, now time.Time) (*challenge.Tracker, bool) {
	tracker := challenge.NewTracker(o.Catalog, o.Source, set)
	if tracker.ShouldReset(now) {
		tracker.InitializeDailySet(now)
		return tracker, true
	}
	return tracker, false
}

// publish emits an event after a commit. Failures are logged and dropped;
// the committed change stands either way.
func (o Options) publish(
	ctx context.Context,
	log *slog.Logger,
	t events.Type,
	userID uuid.UUID,
	at time.Time,
	payload interface{},
) {
	e, err := events.New(t, userID, payload, at)
	if err == nil {
		err = o.Events.Emit(ctx, e)
	}
	if err != nil {
		log.Warn("failed to publish event",
			slog.String("event_type", string(t)),
			slog.String("error", err.Error()))
	}
}
