// Package auth verifies the bearer tokens issued to users by the managed
// backend. Tokens are HS256-signed and carry the user's UUID in "sub".
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for JWT authentication tokens.
type JWTService interface {
	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns the claims containing user information if the token is valid,
	// or an error if validation fails (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateToken creates a signed token for userID valid for lifetime.
	// Production tokens come from the managed backend; this is used by the
	// token CLI command and by tests.
	GenerateToken(ctx context.Context, userID uuid.UUID, lifetime time.Duration) (string, error)
}

// Claims represents the verified contents of a token.
type Claims struct {
	// UserID is parsed from the subject claim.
	UserID    uuid.UUID `json:"sub"`
	Issuer    string    `json:"iss,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
