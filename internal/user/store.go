package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrConflict = errors.New("email already exists")
)

// Store persists account records. Implementations must return ErrNotFound
// for lookups that match nothing and ErrConflict when a save would violate
// email uniqueness.
type Store interface {
	// FindByEmailSecure loads only the client-safe columns of a record.
	// PasswordHash, VerificationToken and the OTP fields stay zero.
	FindByEmailSecure(ctx context.Context, email string) (*User, error)

	// FindByEmailInsecure loads the full record including credential and
	// recovery material. For service-internal use only.
	FindByEmailInsecure(ctx context.Context, email string) (*User, error)

	// Save writes the record, inserting or overwriting by ID.
	Save(ctx context.Context, u *User) error
}
