package auth

import "context"

// Notifier delivers account mail. Sends happen off the request path, so a
// failed send is logged rather than surfaced to the caller.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, toEmail, token string) error
	SendPasswordResetOTP(ctx context.Context, toEmail, otp string) error
}
