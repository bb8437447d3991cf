package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the persistence model for an account record.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                uuid.UUID  `bun:"id,pk,type:uuid"`
	Email             string     `bun:"email,notnull,unique"`
	PasswordHash      string     `bun:"password_hash,notnull"`
	IsVerified        bool       `bun:"is_verified,notnull,default:false"`
	VerificationToken *string    `bun:"verification_token"`
	OTPHash           *string    `bun:"otp_hash"`
	OTPExpiresAt      *time.Time `bun:"otp_expires_at"`
	LastLogin         *time.Time `bun:"last_login"`
	CreatedAt         time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}
