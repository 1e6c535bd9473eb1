// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnknownChallenge is returned when a challenge id is not part of the catalog.
	ErrUnknownChallenge = errors.New("unknown challenge")

	// ErrUnknownAchievement is returned when an achievement id is not part of the catalog.
	ErrUnknownAchievement = errors.New("unknown achievement")
)
