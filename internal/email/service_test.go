package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVerificationEmail(t *testing.T) {
	link := "http://localhost:3000/verify-email?token=abc123"

	body, err := renderVerificationEmail(link)
	require.NoError(t, err)

	assert.Contains(t, body, link)
	assert.Contains(t, body, "Verify your email address")
	assert.Contains(t, body, "Verify Email Address")
}

func TestRenderVerificationEmailEscapesToken(t *testing.T) {
	link := `http://localhost:3000/verify-email?token=<script>alert(1)</script>`

	body, err := renderVerificationEmail(link)
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
}

func TestRenderPasswordResetEmail(t *testing.T) {
	otp := "a1b2c3d4e5f6"

	body, err := renderPasswordResetEmail(otp)
	require.NoError(t, err)

	assert.Contains(t, body, otp)
	assert.Contains(t, body, "Password Reset Request")
	assert.Contains(t, body, "expire in 5 minutes")
}

func TestNewServiceUsesSMTPUserAsSender(t *testing.T) {
	svc := NewService("smtp.example.com", "587", "noreply@example.com", "secret", "http://localhost:3000")

	assert.Equal(t, "noreply@example.com", svc.fromEmail)
	assert.Equal(t, "http://localhost:3000", svc.frontendURL)
}
