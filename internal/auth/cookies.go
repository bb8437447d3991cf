package auth

import "net/http"

const (
	refreshCookieName = "refresh_token"

	// Scoped to the auth endpoints so the browser never attaches the
	// refresh token anywhere else.
	refreshCookiePath = "/auth"
)

// SetRefreshCookie stores the refresh token in an HttpOnly cookie. Secure is
// off only in development so local HTTP still works.
func SetRefreshCookie(w http.ResponseWriter, token string, secure bool, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearRefreshCookie expires the refresh cookie immediately.
func ClearRefreshCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// RefreshTokenFromCookie reads the refresh token off the request, returning
// an empty string when the cookie is absent.
func RefreshTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
