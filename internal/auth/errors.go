package auth

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindInternal
)

// Error is what the login flow returns to its callers. Message is safe to
// show to clients; Err keeps the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind and message, so a wrapped internal error still
// compares equal to its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrMissingCredentials = &Error{Kind: KindValidation, Message: "Email and password required"}
	ErrMissingOTPFields   = &Error{Kind: KindValidation, Message: "loginSessionId and otp required"}

	ErrInvalidSession  = &Error{Kind: KindAuth, Message: "Invalid session"}
	ErrSessionExpired  = &Error{Kind: KindAuth, Message: "Session expired"}
	ErrInvalidOTP      = &Error{Kind: KindAuth, Message: "Invalid OTP"}
	ErrNoSessionCookie = &Error{Kind: KindAuth, Message: "No session cookie found"}

	ErrLoginFailed           = &Error{Kind: KindInternal, Message: "Login failed"}
	ErrOTPVerificationFailed = &Error{Kind: KindInternal, Message: "OTP verification failed"}
	ErrTokenGenerationFailed = &Error{Kind: KindInternal, Message: "Token generation failed"}
)

func internalError(sentinel *Error, cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: sentinel.Message,
		Err:     cause,
	}
}

// AsError unwraps err into an *Error. Anything else is reported as the
// given internal fallback.
func AsError(err error, fallback *Error) *Error {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr
	}
	return internalError(fallback, err)
}

// outcome is the metrics label for the result of a flow step.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingCredentials), errors.Is(err, ErrMissingOTPFields):
		return "missing_fields"
	case errors.Is(err, ErrInvalidSession):
		return "invalid_session"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrInvalidOTP):
		return "invalid_otp"
	case errors.Is(err, ErrNoSessionCookie):
		return "no_cookie"
	default:
		return "error"
	}
}
