package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/account-service/internal/database"
)

// PostgresStore persists account records in Postgres through bun.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// secureColumns is the column set a secure read selects. Credential and
// recovery columns are never part of it.
var secureColumns = []string{"id", "email", "is_verified", "last_login", "created_at", "updated_at"}

func (s *PostgresStore) FindByEmailSecure(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := s.db.NewSelect().
		Model(dbUser).
		Column(secureColumns...).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

func (s *PostgresStore) FindByEmailInsecure(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := s.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// Save upserts the record by primary key so callers can use one write path
// for both creation and updates. A save that would reuse another record's
// email maps to ErrConflict.
func (s *PostgresStore) Save(ctx context.Context, u *User) error {
	dbUser := mapModelToDBUser(u)

	_, err := s.db.NewInsert().
		Model(dbUser).
		On("CONFLICT (id) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("password_hash = EXCLUDED.password_hash").
		Set("is_verified = EXCLUDED.is_verified").
		Set("verification_token = EXCLUDED.verification_token").
		Set("otp_hash = EXCLUDED.otp_hash").
		Set("otp_expires_at = EXCLUDED.otp_expires_at").
		Set("last_login = EXCLUDED.last_login").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return ErrConflict
		}
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:                dbu.ID,
		Email:             dbu.Email,
		PasswordHash:      dbu.PasswordHash,
		IsVerified:        dbu.IsVerified,
		VerificationToken: dbu.VerificationToken,
		OTPHash:           dbu.OTPHash,
		OTPExpiresAt:      dbu.OTPExpiresAt,
		LastLogin:         dbu.LastLogin,
		CreatedAt:         dbu.CreatedAt,
		UpdatedAt:         dbu.UpdatedAt,
	}
}

func mapModelToDBUser(u *User) *database.User {
	return &database.User{
		ID:                u.ID,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		IsVerified:        u.IsVerified,
		VerificationToken: u.VerificationToken,
		OTPHash:           u.OTPHash,
		OTPExpiresAt:      u.OTPExpiresAt,
		LastLogin:         u.LastLogin,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
