package auth

import "time"

const (
	// SessionTTL is the window in which the OTP of a login session can be confirmed.
	SessionTTL = 2 * time.Minute
	// AccessTokenTTL bounds both the access token and the session cookie.
	AccessTokenTTL = 15 * time.Minute

	SessionCookieName = "session_token"

	SessionsKeyPrefix = "otpgate-login-session||"
	OTPsKeyPrefix     = "otpgate-pending-otp||"
)

// LoginSession binds submitted credentials to one authentication attempt.
// Credentials are held verbatim and never checked against a user directory.
type LoginSession struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether now is strictly past the session expiry.
func (s LoginSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
