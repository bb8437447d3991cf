package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPasetoKey = []byte("0123456789abcdef0123456789abcdef")

func newTestIssuer(t *testing.T, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testPasetoKey, accessTTL, refreshTTL)
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuerRejectsBadKeyLength(t *testing.T) {
	_, err := NewTokenIssuer([]byte("too short"), time.Minute, time.Hour)
	require.Error(t, err)

	_, err = NewTokenIssuer(append(testPasetoKey, 'x'), time.Minute, time.Hour)
	require.Error(t, err)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	issuer := newTestIssuer(t, 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	pair, err := issuer.Issue(userID, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt, 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt, 5*time.Second)
}

func TestDecodeRefresh(t *testing.T) {
	issuer := newTestIssuer(t, 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	pair, err := issuer.Issue(userID, "bob@example.com")
	require.NoError(t, err)

	claims, err := issuer.DecodeRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "bob@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestTokenTypeConfusionRejected(t *testing.T) {
	issuer := newTestIssuer(t, 15*time.Minute, 7*24*time.Hour)

	pair, err := issuer.Issue(uuid.New(), "carol@example.com")
	require.NoError(t, err)

	// A refresh token must not pass access verification and vice versa.
	_, err = issuer.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = issuer.DecodeRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredTokenReportedAsExpired(t *testing.T) {
	issuer := newTestIssuer(t, -time.Minute, -time.Minute)

	pair, err := issuer.Issue(uuid.New(), "late@example.com")
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = issuer.DecodeRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestGarbageTokenReportedAsInvalid(t *testing.T) {
	issuer := newTestIssuer(t, 15*time.Minute, 7*24*time.Hour)

	for _, token := range []string{"", "garbage", "v4.local.AAAAAAAA", "v2.local.something"} {
		_, err := issuer.VerifyAccess(token)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", token)
	}
}

func TestTokenFromDifferentKeyRejected(t *testing.T) {
	issuer := newTestIssuer(t, 15*time.Minute, 7*24*time.Hour)

	otherKey := []byte("ffffffffffffffffffffffffffffffff")
	other, err := NewTokenIssuer(otherKey, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	pair, err := other.Issue(uuid.New(), "mallory@example.com")
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
