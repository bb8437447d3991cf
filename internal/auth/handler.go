package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redmonkez12/account-service/internal/httputil"
	"github.com/redmonkez12/account-service/internal/logging"
)

// Handler contains HTTP handlers for the account endpoints
type Handler struct {
	service         *Service
	logger          *logging.Logger
	isProduction    bool
	accessDuration  time.Duration
	refreshDuration time.Duration
}

func NewHandler(service *Service, logger *logging.Logger, isProduction bool, accessDuration, refreshDuration time.Duration) *Handler {
	return &Handler{
		service:         service,
		logger:          logger,
		isProduction:    isProduction,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents the token refresh and logout request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ForgotPasswordRequest represents the password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the password reset confirmation
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// TokenResponse carries the freshly minted access token. The refresh token
// never appears in a response body; it travels only in the refresh cookie.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Signup handles account creation
// @Summary      Register a new account
// @Description  Create a new account with email and password. A verification email will be sent.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup credentials"
// @Success      201 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Invalid request or validation error"
// @Failure      409 {object} httputil.Envelope "Email already registered"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	profile, err := h.service.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			logger.Warn("signup failed: email already registered")
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		if errors.Is(err, ErrEmailRequired) || errors.Is(err, ErrPasswordRequired) ||
			errors.Is(err, ErrPasswordTooShort) || errors.Is(err, ErrInvalidEmailFormat) {
			logger.Warn("signup failed: validation error", "error", err.Error())
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("signup failed: internal error", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	logger.Info("account created", "user_id", profile.ID)

	respond(w, http.StatusCreated, "Registration successful. Please check your email to verify your account.", profile)
}

// Login handles user login
// @Summary      Log in
// @Description  Authenticate with email and password and receive an access token. The refresh token is set as an HttpOnly cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Invalid request body"
// @Failure      401 {object} httputil.Envelope "Invalid credentials"
// @Failure      403 {object} httputil.Envelope "Email not verified"
// @Failure      404 {object} httputil.Envelope "Unknown account"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.Warn("login failed: unknown account")
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		if errors.Is(err, ErrEmailNotVerified) {
			logger.Warn("login failed: email not verified")
			respondError(w, http.StatusForbidden, "email not verified, please check your inbox")
			return
		}
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			respondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	logger.Info("user logged in successfully")

	SetRefreshCookie(w, tokens.RefreshToken, h.isProduction, int(h.refreshDuration.Seconds()))

	respond(w, http.StatusOK, "logged in successfully", TokenResponse{
		AccessToken: tokens.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.accessDuration.Seconds()),
	})
}

// VerifyEmail handles email verification
// @Summary      Verify email address
// @Description  Verify an account's email address using the token from the verification email
// @Tags         auth
// @Produce      json
// @Param        token query string true "Verification token"
// @Param        email query string true "Account email"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Invalid or already used token"
// @Failure      404 {object} httputil.Envelope "Unknown account"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/verify-email [get]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token := r.URL.Query().Get("token")
	email := r.URL.Query().Get("email")
	if token == "" || email == "" {
		logger.Warn("email verification failed: token or email missing")
		respondError(w, http.StatusBadRequest, "verification token and email required")
		return
	}

	if err := h.service.VerifyEmail(r.Context(), token, email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.Warn("email verification failed: unknown account")
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		if errors.Is(err, ErrVerificationInvalid) {
			logger.Warn("email verification failed: invalid token")
			respondError(w, http.StatusBadRequest, "invalid verification link")
			return
		}
		logger.Error("email verification failed: internal error", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to verify email")
		return
	}

	logger.Info("email verified successfully")

	respond(w, http.StatusOK, "Email verified successfully. You can now login.", nil)
}

// Refresh handles access token rotation
// @Summary      Refresh tokens
// @Description  Trade a valid refresh token for a fresh access token and refresh cookie. The old refresh token is revoked.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest false "Refresh token (cookie is used when present)"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Refresh token missing"
// @Failure      401 {object} httputil.Envelope "Invalid, expired or revoked refresh token"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing authentication")
		return
	}
	oldToken, ok := RefreshTokenFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	tokens, err := h.service.RefreshAccessToken(r.Context(), id, oldToken)
	if err != nil {
		if errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenExpired) {
			logger.Warn("token refresh failed: invalid or expired token", "error", err.Error())
			respondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
			return
		}
		logger.Error("token refresh failed: internal error", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	logger.Info("access token refreshed successfully", "user_id", id.UserID)

	SetRefreshCookie(w, tokens.RefreshToken, h.isProduction, int(h.refreshDuration.Seconds()))

	respond(w, http.StatusOK, "token refreshed successfully", TokenResponse{
		AccessToken: tokens.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.accessDuration.Seconds()),
	})
}

// Logout handles user logout
// @Summary      Log out
// @Description  Revoke the refresh token and clear the refresh cookie. Stale or missing tokens still log out cleanly.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest false "Optional refresh token"
// @Success      200 {object} httputil.Envelope
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token := RefreshTokenFromCookie(r)
	if token == "" {
		var req RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}

	// The cookie goes regardless of what the revocation does
	ClearRefreshCookie(w, h.isProduction)

	if token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			logger.Error("logout failed: could not revoke refresh token", "error", err.Error())
			respondError(w, http.StatusInternalServerError, "failed to logout")
			return
		}
	}

	logger.Info("user logged out successfully")

	respond(w, http.StatusOK, "logged out", nil)
}

// ForgotPassword handles password reset requests
// @Summary      Request a password reset code
// @Description  Send a short-lived one-time code to the account's email address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Account email"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Invalid request body"
// @Failure      404 {object} httputil.Envelope "Unknown account"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid forgot password request body", "error", err.Error())
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.Warn("forgot password failed: unknown account")
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		logger.Error("forgot password failed: internal error", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to send reset code")
		return
	}

	logger.Info("password reset code issued")

	respond(w, http.StatusOK, "password reset code sent", nil)
}

// ResetPassword handles password reset with a one-time code
// @Summary      Reset password
// @Description  Set a new password using the one-time code from the reset email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Email, one-time code and new password"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Invalid request, expired or wrong code"
// @Failure      404 {object} httputil.Envelope "Unknown account"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset password request body", "error", err.Error())
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.service.ResetPassword(r.Context(), req.Email, req.NewPassword, req.OTP); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.Warn("password reset failed: unknown account")
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		if errors.Is(err, ErrOTPExpired) {
			logger.Warn("password reset failed: code expired")
			respondError(w, http.StatusBadRequest, "one-time code has expired")
			return
		}
		if errors.Is(err, ErrOTPInvalid) {
			logger.Warn("password reset failed: wrong code")
			respondError(w, http.StatusBadRequest, "invalid one-time code")
			return
		}
		if errors.Is(err, ErrPasswordRequired) || errors.Is(err, ErrPasswordTooShort) {
			logger.Warn("password reset failed: validation error", "error", err.Error())
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("password reset failed: internal error", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	logger.Info("password reset successfully")

	respond(w, http.StatusOK, "Password reset successfully. You can now login with your new password.", nil)
}

// Me returns the authenticated account's profile
// @Summary      Current account
// @Description  Return the client-safe profile of the authenticated account
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      401 {object} httputil.Envelope "Missing or invalid access token"
// @Failure      404 {object} httputil.Envelope "Account no longer exists"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing authentication")
		return
	}

	profile, err := h.service.Profile(r.Context(), id.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.Warn("profile lookup failed: account gone", "user_id", id.UserID)
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		logger.Error("profile lookup failed: internal error", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	respond(w, http.StatusOK, "ok", profile)
}

// respond sends an enveloped JSON response
func respond(w http.ResponseWriter, statusCode int, message string, data any) {
	httputil.Respond(w, statusCode, message, data)
}

// respondError sends an enveloped error response
func respondError(w http.ResponseWriter, statusCode int, message string) {
	httputil.RespondError(w, statusCode, message)
}
