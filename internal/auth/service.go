package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/account-service/internal/logging"
	"github.com/redmonkez12/account-service/internal/user"
)

var (
	ErrAccountExists       = errors.New("account with this email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailRequired       = errors.New("email is required")
	ErrPasswordRequired    = errors.New("password is required")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
	ErrInvalidEmailFormat  = errors.New("invalid email format")
	ErrEmailNotVerified    = errors.New("email not verified, please check your inbox")
	ErrVerificationInvalid = errors.New("invalid verification link")
	ErrOTPExpired          = errors.New("one-time code has expired")
	ErrOTPInvalid          = errors.New("invalid one-time code")
)

// One-time reset codes: 6 random bytes hex-encoded, valid for five minutes.
const (
	otpBytes = 6
	otpTTL   = 5 * time.Minute
)

// Identity names an authenticated principal as carried in token claims.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Service implements the account lifecycle: signup, login, email
// verification, token rotation, logout and password recovery.
type Service struct {
	users     user.Store
	blacklist Blacklist
	issuer    *TokenIssuer
	hasher    *Hasher
	notifier  Notifier
	logger    *logging.Logger
}

func NewService(
	users user.Store,
	blacklist Blacklist,
	issuer *TokenIssuer,
	hasher *Hasher,
	notifier Notifier,
	logger *logging.Logger,
) *Service {
	return &Service{
		users:     users,
		blacklist: blacklist,
		issuer:    issuer,
		hasher:    hasher,
		notifier:  notifier,
		logger:    logger,
	}
}

// Signup creates a new unverified account and sends the verification email.
func (s *Service) Signup(ctx context.Context, email, password string) (*user.SecureProfile, error) {
	email = normalizeEmail(email)
	if err := validateSignupInput(email, password); err != nil {
		return nil, err
	}

	// The existence probe needs no secret material
	_, err := s.users.FindByEmailSecure(ctx, email)
	if err == nil {
		return nil, ErrAccountExists
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verificationToken, err := generateRandomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	now := time.Now()
	newUser := &user.User{
		ID:                uuid.New(),
		Email:             email,
		PasswordHash:      passwordHash,
		IsVerified:        false,
		VerificationToken: &verificationToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.users.Save(ctx, newUser); err != nil {
		if errors.Is(err, user.ErrConflict) {
			// Lost the uniqueness race to a concurrent signup
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Send verification email in a goroutine (non-blocking)
	go func() {
		// Fresh context so the send outlives the request
		emailCtx := context.Background()
		if err := s.notifier.SendVerificationEmail(emailCtx, email, verificationToken); err != nil {
			s.logger.Warn("failed to send verification email", "email", email, "error", err)
		}
	}()

	return newUser.Secure(), nil
}

// Login authenticates a user and mints a fresh token pair. Unverified
// accounts are turned away before the password is checked at all, with a
// new copy of the verification email on the way out.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = normalizeEmail(email)

	existing, err := s.users.FindByEmailInsecure(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !existing.IsVerified {
		s.resendVerification(existing.Email, existing.VerificationToken)
		return nil, ErrEmailNotVerified
	}

	if !s.hasher.Verify(existing.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issuer.Issue(existing.ID, existing.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	now := time.Now()
	existing.LastLogin = &now
	existing.UpdatedAt = now
	if err := s.users.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return tokens, nil
}

// resendVerification reuses the stored token so links from earlier emails
// keep working.
func (s *Service) resendVerification(email string, token *string) {
	if token == nil {
		s.logger.Warn("unverified account has no verification token", "email", email)
		return
	}

	verificationToken := *token
	go func() {
		emailCtx := context.Background()
		if err := s.notifier.SendVerificationEmail(emailCtx, email, verificationToken); err != nil {
			s.logger.Warn("failed to resend verification email", "email", email, "error", err)
		}
	}()
}

// VerifyEmail flips the account to verified when the presented token matches
// the stored one. The match clears the token, so replaying the same link
// fails.
func (s *Service) VerifyEmail(ctx context.Context, token, email string) error {
	email = normalizeEmail(email)

	existing, err := s.users.FindByEmailInsecure(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if existing.VerificationToken == nil {
		return ErrVerificationInvalid
	}
	if subtle.ConstantTimeCompare([]byte(*existing.VerificationToken), []byte(token)) != 1 {
		return ErrVerificationInvalid
	}

	existing.IsVerified = true
	existing.VerificationToken = nil
	existing.UpdatedAt = time.Now()

	if err := s.users.Save(ctx, existing); err != nil {
		return fmt.Errorf("failed to mark email as verified: %w", err)
	}

	return nil
}

// RefreshAccessToken rotates a refresh token: the old token is blacklisted
// before the new pair is minted, so a crash between the two steps costs the
// client a login rather than leaving a token alive twice. Two concurrent
// refreshes with the same token can still both pass the revocation check
// and each walk away with a pair; the window is the round trip to Redis.
func (s *Service) RefreshAccessToken(ctx context.Context, id Identity, oldToken string) (*TokenPair, error) {
	claims, err := s.issuer.DecodeRefresh(oldToken)
	if err != nil {
		return nil, err
	}

	if err := s.blacklist.Add(ctx, oldToken, claims.ExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to revoke old refresh token: %w", err)
	}

	tokens, err := s.issuer.Issue(id.UserID, id.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokens, nil
}

// Logout revokes the refresh token. A token that no longer decodes is
// already dead, so logout never fails the client over a stale session.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.issuer.DecodeRefresh(token)
	if err != nil {
		return nil
	}

	if err := s.blacklist.Add(ctx, token, claims.ExpiresAt); err != nil {
		return fmt.Errorf("failed to blacklist refresh token: %w", err)
	}

	return nil
}

// ForgotPassword issues a short-lived one-time code and mails it out. Any
// previous code is overwritten, so only the latest one can reset.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	existing, err := s.users.FindByEmailInsecure(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate one-time code: %w", err)
	}

	otpHash, err := s.hasher.Hash(otp)
	if err != nil {
		return fmt.Errorf("failed to hash one-time code: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(otpTTL)
	existing.OTPHash = &otpHash
	existing.OTPExpiresAt = &expiresAt
	existing.UpdatedAt = now

	if err := s.users.Save(ctx, existing); err != nil {
		return fmt.Errorf("failed to store one-time code: %w", err)
	}

	go func() {
		emailCtx := context.Background()
		if err := s.notifier.SendPasswordResetOTP(emailCtx, email, otp); err != nil {
			s.logger.Warn("failed to send password reset code", "email", email, "error", err)
		}
	}()

	return nil
}

// ResetPassword swaps in a new password when the one-time code checks out.
// Failed attempts leave the record untouched; the stored code stays usable
// until its expiry. Outstanding sessions are not revoked.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword, otp string) error {
	email = normalizeEmail(email)

	if newPassword == "" {
		return ErrPasswordRequired
	}
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}

	existing, err := s.users.FindByEmailInsecure(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if existing.OTPHash == nil || existing.OTPExpiresAt == nil {
		return ErrOTPExpired
	}
	if time.Now().After(*existing.OTPExpiresAt) {
		return ErrOTPExpired
	}

	if !s.hasher.Verify(*existing.OTPHash, otp) {
		return ErrOTPInvalid
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	existing.PasswordHash = passwordHash
	existing.OTPHash = nil
	existing.OTPExpiresAt = nil
	existing.UpdatedAt = time.Now()

	if err := s.users.Save(ctx, existing); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// Profile returns the client-safe view of an account.
func (s *Service) Profile(ctx context.Context, email string) (*user.SecureProfile, error) {
	existing, err := s.users.FindByEmailSecure(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return existing.Secure(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignupInput(email, password string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 {
		return ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmailFormat
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

// generateRandomToken creates a cryptographically secure random token
func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// generateOTP creates a short hex code that survives being typed off a phone
func generateOTP() (string, error) {
	b := make([]byte, otpBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
