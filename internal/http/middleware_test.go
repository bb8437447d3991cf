package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func applySecurityHeaders(t *testing.T, path string) http.Header {
	t.Helper()

	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Header()
}

func TestSecurityHeadersDefaults(t *testing.T) {
	headers := applySecurityHeaders(t, "/health")

	assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", headers.Get("Referrer-Policy"))
	assert.Equal(t, "default-src 'none'", headers.Get("Content-Security-Policy"))
	assert.Empty(t, headers.Get("Cache-Control"))
}

func TestSecurityHeadersRelaxesCSPForSwagger(t *testing.T) {
	headers := applySecurityHeaders(t, "/swagger/index.html")

	csp := headers.Get("Content-Security-Policy")
	assert.Contains(t, csp, "script-src 'self' 'unsafe-inline'")
	assert.NotEqual(t, "default-src 'none'", csp)
}

func TestSecurityHeadersDisableCachingOnAuthRoutes(t *testing.T) {
	headers := applySecurityHeaders(t, "/auth/login")

	assert.Equal(t, "no-store", headers.Get("Cache-Control"))
}
