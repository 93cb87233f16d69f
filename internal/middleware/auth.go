package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/otpgate/internal/telemetry/metrics"
	"github.com/2beens/otpgate/internal/telemetry/tracing"
	"github.com/2beens/otpgate/internal/token"
	"github.com/2beens/otpgate/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=middleware_test

type tokenVerifier interface {
	Verify(tokenStr string) (*token.Claims, error)
}

type claimsCtxKey struct{}

// ClaimsFromContext returns the access token claims put there by AuthCheck.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(*token.Claims)
	return claims, ok
}

func ContextWithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

type AuthMiddlewareHandler struct {
	verifier       tokenVerifier
	metricsManager *metrics.Manager
	allowedPaths   map[string]bool
}

func NewAuthMiddlewareHandler(
	verifier tokenVerifier,
	metricsManager *metrics.Manager,
) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		verifier:       verifier,
		metricsManager: metricsManager,
		allowedPaths: map[string]bool{
			"/": true,

			// login flow:
			"/auth/login":      true,
			"/auth/verify-otp": true,
			"/auth/token":      true,
		},
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken, found := bearerToken(r)
			if !found {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				h.count("missing_token")
				writeUnauthorized(w, "Access token required")
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			claims, err := h.verifier.Verify(authToken)
			if err != nil {
				span.RecordError(err)
				if errors.Is(err, token.ErrExpiredToken) {
					log.Tracef("[expired token] [auth middleware] unauthorized => %s", r.URL.Path)
					h.count("expired_token")
					writeUnauthorized(w, "Token expired")
					span.SetStatus(codes.Error, "expired-token")
					return
				}
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s: %s", r.URL.Path, err)
				h.count("invalid_token")
				writeUnauthorized(w, "Invalid token")
				span.SetStatus(codes.Error, "invalid-token")
				return
			}

			h.count("ok")
			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(ctx, claims)))
		})
	}
}

func (h *AuthMiddlewareHandler) count(result string) {
	if h.metricsManager == nil {
		return
	}
	h.metricsManager.CounterProtectedAccess.With(prometheus.Labels{"result": result}).Inc()
}

// bearerToken reads "Authorization: Bearer <token>", scheme case-insensitive.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	scheme, authToken, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	authToken = strings.TrimSpace(authToken)
	return authToken, authToken != ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	pkg.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": message})
}
