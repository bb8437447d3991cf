package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the full account record, secret material included. It only travels
// between the store and the account service; anything leaving the service
// goes through Secure first.
type User struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"` // Never expose password hash in JSON
	IsVerified        bool       `json:"is_verified"`
	VerificationToken *string    `json:"-"`
	OTPHash           *string    `json:"-"`
	OTPExpiresAt      *time.Time `json:"-"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// SecureProfile is the client-facing view of an account. It carries no
// credential or recovery material at all.
type SecureProfile struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	IsVerified bool       `json:"is_verified"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Secure projects the record down to its client-facing fields.
func (u *User) Secure() *SecureProfile {
	return &SecureProfile{
		ID:         u.ID,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
