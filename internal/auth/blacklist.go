package auth

import (
	"context"
	"time"
)

// Blacklist records revoked refresh tokens until their natural expiry.
// After that a token rejects itself, so entries past expiresAt are useless.
type Blacklist interface {
	// Add revokes the token until expiresAt. Re-adding a blacklisted
	// token is a no-op, as is adding one that has already expired.
	Add(ctx context.Context, token string, expiresAt time.Time) error

	// Contains reports whether the token is currently revoked.
	Contains(ctx context.Context, token string) (bool, error)
}
