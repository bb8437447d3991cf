package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// Token purpose claim values. Each verification path rejects tokens minted
// for the other purpose, so an access token can never stand in for a refresh
// token or vice versa.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenClaims represents the claims stored in a PASETO token
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is a freshly minted access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer mints and validates PASETO tokens
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305)
type TokenIssuer struct {
	symmetricKey paseto.V4SymmetricKey
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

func NewTokenIssuer(symmetricKey []byte, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &TokenIssuer{
		symmetricKey: key,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}, nil
}

// Issue mints a new token pair for the given identity.
func (ti *TokenIssuer) Issue(userID uuid.UUID, email string) (*TokenPair, error) {
	accessToken, err := ti.mint(userID, email, tokenTypeAccess, ti.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := ti.mint(userID, email, tokenTypeRefresh, ti.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// VerifyAccess validates an access token and returns its claims.
func (ti *TokenIssuer) VerifyAccess(tokenStr string) (*TokenClaims, error) {
	return ti.parse(tokenStr, tokenTypeAccess)
}

// DecodeRefresh validates a refresh token and returns its claims.
func (ti *TokenIssuer) DecodeRefresh(tokenStr string) (*TokenClaims, error) {
	return ti.parse(tokenStr, tokenTypeRefresh)
}

func (ti *TokenIssuer) mint(userID uuid.UUID, email, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(ttl))
	token.SetString("user_id", userID.String())
	token.SetString("email", email)
	token.SetString("token_type", tokenType)

	return token.V4Encrypt(ti.symmetricKey, nil), nil
}

func (ti *TokenIssuer) parse(tokenStr, wantType string) (*TokenClaims, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(ti.symmetricKey, tokenStr, nil)
	if err != nil {
		// The parser checks expiration by default; distinguish expired from invalid
		if errors.Is(err, &paseto.RuleError{}) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	tokenType, err := token.GetString("token_type")
	if err != nil || tokenType != wantType {
		return nil, ErrTokenInvalid
	}

	rawUserID, err := token.GetString("user_id")
	if err != nil {
		return nil, ErrTokenInvalid
	}

	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	email, err := token.GetString("email")
	if err != nil {
		return nil, ErrTokenInvalid
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrTokenInvalid
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return &TokenClaims{
		UserID:    userID,
		Email:     email,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
