package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/otpgate/internal/telemetry/tracing"
	"github.com/2beens/otpgate/pkg"
)

type LoginRequest struct {
	Email    LenientString `json:"email"`
	Password LenientString `json:"password"`
}

type LoginResponse struct {
	Message        string `json:"message"`
	LoginSessionID string `json:"loginSessionId"`
}

type VerifyOTPRequest struct {
	LoginSessionID LenientString `json:"loginSessionId"`
	OTP            LenientString `json:"otp"`
}

type VerifyOTPResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// LenientString takes any JSON value as text: numbers keep their literal,
// objects and arrays their raw JSON. Values a client would consider
// "not sent" (null, "", 0, false) decode to "".
type LenientString string

func (v *LenientString) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch val := raw.(type) {
	case string:
		*v = LenientString(val)
	case json.Number:
		if f, err := val.Float64(); err == nil && f == 0 {
			*v = ""
		} else {
			*v = LenientString(val.String())
		}
	case bool:
		if val {
			*v = "true"
		} else {
			*v = ""
		}
	case nil:
		*v = ""
	default:
		// objects and arrays count as present
		*v = LenientString(data)
	}
	return nil
}

type Handler struct {
	flow         *Flow
	secureCookie bool
}

func NewHandler(flow *Flow, secureCookie bool) *Handler {
	return &Handler{
		flow:         flow,
		secureCookie: secureCookie,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	authRouter := mainRouter.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/login", handler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	authRouter.HandleFunc("/verify-otp", handler.HandleVerifyOTP).Methods("POST", "OPTIONS").Name("verify-otp")
	authRouter.HandleFunc("/token", handler.HandleToken).Methods("POST", "OPTIONS").Name("token")
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	var loginReq LoginRequest
	decodeBody(r, &loginReq)

	sessionID, _, err := handler.flow.BeginLogin(ctx, string(loginReq.Email), string(loginReq.Password))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.writeFlowError(w, err, ErrLoginFailed)
		return
	}

	span.SetAttributes(attribute.String("login.session_id", sessionID))
	span.SetStatus(codes.Ok, "otp-sent")
	pkg.WriteJSON(w, http.StatusOK, LoginResponse{
		Message:        "OTP sent",
		LoginSessionID: sessionID,
	})
}

func (handler *Handler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.verifyOTP")
	defer span.End()

	var verifyReq VerifyOTPRequest
	decodeBody(r, &verifyReq)

	loginSessionID := string(verifyReq.LoginSessionID)
	span.SetAttributes(attribute.String("login.session_id", loginSessionID))

	cookieValue, err := handler.flow.VerifyOTP(ctx, loginSessionID, string(verifyReq.OTP))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.writeFlowError(w, err, ErrOTPVerificationFailed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    cookieValue,
		Path:     "/",
		MaxAge:   int(AccessTokenTTL.Seconds()),
		Expires:  handler.flow.now().Add(AccessTokenTTL),
		HttpOnly: true,
		Secure:   handler.secureCookie,
	})

	span.SetStatus(codes.Ok, "otp-verified")
	pkg.WriteJSON(w, http.StatusOK, VerifyOTPResponse{
		Message:   "OTP verified",
		SessionID: cookieValue,
	})
}

func (handler *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.token")
	defer span.End()

	var sessionToken string
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		sessionToken = cookie.Value
	}
	log.Tracef("token request, session cookie present: %t", sessionToken != "")

	accessToken, err := handler.flow.IssueToken(ctx, sessionToken)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handler.writeFlowError(w, err, ErrTokenGenerationFailed)
		return
	}

	span.SetStatus(codes.Ok, "token-issued")
	pkg.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: accessToken,
	})
}

// writeFlowError answers with the client-safe message of err.
// Login and OTP verification report internal failures as {status, message},
// the token endpoint as {error}.
func (handler *Handler) writeFlowError(w http.ResponseWriter, err error, fallback *Error) {
	authErr := AsError(err, fallback)

	if authErr.Kind == KindInternal && !errors.Is(fallback, ErrTokenGenerationFailed) {
		pkg.WriteJSON(w, authErr.StatusCode(), StatusErrorResponse{
			Status:  "error",
			Message: authErr.Message,
		})
		return
	}

	pkg.WriteJSON(w, authErr.StatusCode(), ErrorResponse{
		Error: authErr.Message,
	})
}

// decodeBody fills dst from a JSON body. Fields of a missing or malformed
// body stay empty, which the flow then reports as missing fields.
func decodeBody(r *http.Request, dst any) {
	if r.Body == nil {
		return
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Tracef("%s %s, decode json body: %s", r.Method, r.URL.Path, err)
	}
}
