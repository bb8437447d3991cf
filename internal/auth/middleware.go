package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/account-service/internal/httputil"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	IdentityContextKey     ContextKey = "identity"
	RefreshTokenContextKey ContextKey = "refresh_token"
)

// Middleware handles authentication for protected routes
type Middleware struct {
	issuer    *TokenIssuer
	blacklist Blacklist
}

func NewMiddleware(issuer *TokenIssuer, blacklist Blacklist) *Middleware {
	return &Middleware{issuer: issuer, blacklist: blacklist}
}

// RequireAuth is a middleware that validates the access token from the
// Authorization header and stores the caller's identity in the context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.RespondError(w, http.StatusUnauthorized, "missing authentication")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := m.issuer.VerifyAccess(parts[1])
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				httputil.RespondError(w, http.StatusUnauthorized, "token has expired")
				return
			}
			httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRefresh is a middleware that validates the refresh token, cookie
// first with the request body as fallback, and rejects blacklisted tokens.
// The decoded identity and the raw token are left in the context.
func (m *Middleware) RequireRefresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := RefreshTokenFromCookie(r)
		if token == "" {
			var req RefreshRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
				token = strings.TrimSpace(req.RefreshToken)
			}
		}

		if token == "" {
			httputil.RespondError(w, http.StatusBadRequest, "refresh token required")
			return
		}

		claims, err := m.issuer.DecodeRefresh(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				httputil.RespondError(w, http.StatusUnauthorized, "refresh token has expired")
				return
			}
			httputil.RespondError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}

		revoked, err := m.blacklist.Contains(r.Context(), token)
		if err != nil {
			httputil.RespondError(w, http.StatusInternalServerError, "failed to validate refresh token")
			return
		}
		if revoked {
			httputil.RespondError(w, http.StatusUnauthorized, "refresh token has been revoked")
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
		})
		ctx = context.WithValue(ctx, RefreshTokenContextKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext extracts the authenticated identity from the request context
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey).(Identity)
	return id, ok
}

// RefreshTokenFromContext extracts the validated raw refresh token from the request context
func RefreshTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(RefreshTokenContextKey).(string)
	return token, ok
}
