package auth

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/otpgate/internal/telemetry/metrics"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=auth_test

type sessionStore interface {
	Put(ctx context.Context, key string, session LoginSession) error
	Get(ctx context.Context, key string) (LoginSession, bool, error)
	Delete(ctx context.Context, key string) error
}

type otpStore interface {
	Put(ctx context.Context, key string, otp int) error
	Get(ctx context.Context, key string) (int, bool, error)
	Take(ctx context.Context, key string) (int, bool, error)
}

type tokenSigner interface {
	Sign(email, sessionID string, ttl time.Duration) (string, error)
}

// Flow drives one login attempt through
// INITIATED -> OTP_PENDING -> OTP_VERIFIED -> TOKEN_ISSUED.
// The state is never stored explicitly: a pending OTP under the session id
// means OTP_PENDING, its absence next to the session means verified.
type Flow struct {
	sessions       sessionStore
	otps           otpStore
	signer         tokenSigner
	random         Random
	now            func() time.Time
	metricsManager *metrics.Manager
}

type FlowParams struct {
	Sessions       sessionStore
	OTPs           otpStore
	Signer         tokenSigner
	Random         Random
	Clock          func() time.Time
	MetricsManager *metrics.Manager
}

func NewFlow(params FlowParams) *Flow {
	f := &Flow{
		sessions:       params.Sessions,
		otps:           params.OTPs,
		signer:         params.Signer,
		random:         params.Random,
		now:            params.Clock,
		metricsManager: params.MetricsManager,
	}
	if f.random == nil {
		f.random = NewSecureRandom()
	}
	if f.now == nil {
		f.now = time.Now
	}
	return f
}

// BeginLogin opens a login session for the given credentials and creates its OTP.
// The OTP only goes to the log; it must not be sent back in the response.
func (f *Flow) BeginLogin(ctx context.Context, email, password string) (_ string, _ int, err error) {
	defer func() { f.count(f.loginCounter(), err) }()

	if email == "" || password == "" {
		return "", 0, ErrMissingCredentials
	}

	sessionID, err := f.random.SessionID()
	if err != nil {
		log.Errorf("login, generate session id: %s", err)
		return "", 0, internalError(ErrLoginFailed, err)
	}
	otp, err := f.random.OTP()
	if err != nil {
		log.Errorf("login, generate otp: %s", err)
		return "", 0, internalError(ErrLoginFailed, err)
	}

	now := f.now()
	session := LoginSession{
		ID:        sessionID,
		Email:     email,
		Password:  password,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := f.sessions.Put(ctx, sessionID, session); err != nil {
		log.Errorf("login, store session %s: %s", sessionID, err)
		return "", 0, internalError(ErrLoginFailed, err)
	}
	if err := f.otps.Put(ctx, sessionID, otp); err != nil {
		log.Errorf("login, store otp for session %s: %s", sessionID, err)
		return "", 0, internalError(ErrLoginFailed, err)
	}

	log.Infof("[OTP] Session %s generated. OTP: %d", sessionID, otp)

	return sessionID, otp, nil
}

// VerifyOTP confirms the OTP of a login session and consumes it.
// It returns the value for the session cookie.
func (f *Flow) VerifyOTP(ctx context.Context, sessionID, otp string) (_ string, err error) {
	defer func() { f.count(f.otpCounter(), err) }()

	if sessionID == "" || otp == "" {
		return "", ErrMissingOTPFields
	}

	session, found, err := f.sessions.Get(ctx, sessionID)
	if err != nil {
		log.Errorf("verify otp, get session %s: %s", sessionID, err)
		return "", internalError(ErrOTPVerificationFailed, err)
	}
	if !found {
		return "", ErrInvalidSession
	}

	// the session expiry also bounds the OTP window
	if session.Expired(f.now()) {
		return "", ErrSessionExpired
	}

	expected, found, err := f.otps.Get(ctx, sessionID)
	if err != nil {
		log.Errorf("verify otp, get otp for session %s: %s", sessionID, err)
		return "", internalError(ErrOTPVerificationFailed, err)
	}
	code, ok := parseOTP(otp)
	if !found || !ok || code != expected {
		log.Tracef("verify otp, invalid otp for session %s", sessionID)
		return "", ErrInvalidOTP
	}

	// claim the OTP; only one of concurrent verifications gets it
	taken, found, err := f.otps.Take(ctx, sessionID)
	if err != nil {
		log.Errorf("verify otp, take otp for session %s: %s", sessionID, err)
		return "", internalError(ErrOTPVerificationFailed, err)
	}
	if !found || taken != code {
		log.Tracef("verify otp, otp for session %s already used or replaced", sessionID)
		return "", ErrInvalidOTP
	}

	log.Debugf("otp verified for session %s", sessionID)
	return sessionID, nil
}

// IssueToken mints an access token for the session named by the cookie.
// The session expiry is not checked here: a verified session keeps minting
// tokens for as long as its record exists.
func (f *Flow) IssueToken(ctx context.Context, cookieValue string) (_ string, err error) {
	defer func() { f.count(f.tokenCounter(), err) }()

	if cookieValue == "" {
		return "", ErrNoSessionCookie
	}

	session, found, err := f.sessions.Get(ctx, cookieValue)
	if err != nil {
		log.Errorf("issue token, get session %s: %s", cookieValue, err)
		return "", internalError(ErrTokenGenerationFailed, err)
	}
	if !found {
		return "", ErrInvalidSession
	}

	accessToken, err := f.signer.Sign(session.Email, cookieValue, AccessTokenTTL)
	if err != nil {
		log.Errorf("issue token for session %s: %s", cookieValue, err)
		return "", internalError(ErrTokenGenerationFailed, err)
	}

	return accessToken, nil
}

// parseOTP reads an integer the lenient way: leading spaces, an optional
// sign, then as many digits as there are. Input without digits never parses.
func parseOTP(raw string) (int, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(sign + s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func (f *Flow) loginCounter() *prometheus.CounterVec {
	if f.metricsManager == nil {
		return nil
	}
	return f.metricsManager.CounterLogins
}

func (f *Flow) otpCounter() *prometheus.CounterVec {
	if f.metricsManager == nil {
		return nil
	}
	return f.metricsManager.CounterOTPVerifications
}

func (f *Flow) tokenCounter() *prometheus.CounterVec {
	if f.metricsManager == nil {
		return nil
	}
	return f.metricsManager.CounterTokensIssued
}

func (f *Flow) count(counter *prometheus.CounterVec, err error) {
	if counter == nil {
		return
	}
	counter.With(prometheus.Labels{"result": outcome(err)}).Inc()
}
