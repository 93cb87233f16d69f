// Package token signs and verifies the HS256 access tokens handed out
// after a successful OTP login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// InsecureDefaultSecret is the fallback used when no secret is configured.
// It must never be used in production.
const InsecureDefaultSecret = "default-secret-key"

var (
	ErrSigning      = errors.New("token signing failed")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the identity carried by an access token.
type Claims struct {
	Email     string `json:"email"`
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Signer)

// WithClock overrides the time source used for iat/exp and for validation.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

func NewSigner(secret string, opts ...Option) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("empty signing secret")
	}

	s := &Signer{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign encodes email and sessionID with iat=now and exp=now+ttl.
func (s *Signer) Sign(email, sessionID string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Email:     email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrSigning, err)
	}
	return signed, nil
}

// Verify checks the signature and the expiry of tokenStr.
func (s *Signer) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
