package challenge

import (
	"encoding/base64"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/otpgate/internal/middleware"
	"github.com/2beens/otpgate/internal/telemetry/tracing"
	"github.com/2beens/otpgate/internal/token"
	"github.com/2beens/otpgate/pkg"
)

const (
	Title       = "Complete the Authentication Flow"
	Instruction = "Complete the authentication flow and obtain a valid access token."

	flagPrefix = "FLAG-"
	flagSuffix = "_COMPLETED_ASSIGNMENT"
)

type RootResponse struct {
	Challenge   string `json:"challenge"`
	Instruction string `json:"instruction"`
}

type ProtectedResponse struct {
	Message     string        `json:"message"`
	User        *token.Claims `json:"user"`
	SuccessFlag string        `json:"success_flag"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/protected", handler.handleProtected).Methods("GET", "OPTIONS").Name("protected")
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, http.StatusOK, RootResponse{
		Challenge:   Title,
		Instruction: Instruction,
	})
}

func (handler *Handler) handleProtected(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "challengeHandler.protected")
	defer span.End()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		// auth middleware not in front of this route
		log.Errorf("protected: no token claims in request context")
		span.SetStatus(codes.Error, "no-claims")
		pkg.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Access token required"})
		return
	}

	span.SetStatus(codes.Ok, "access-granted")
	pkg.WriteJSON(w, http.StatusOK, ProtectedResponse{
		Message:     "Access granted",
		User:        claims,
		SuccessFlag: SuccessFlag(claims.Email),
	})
}

// SuccessFlag is "FLAG-" followed by the standard base64 of email+"_COMPLETED_ASSIGNMENT".
func SuccessFlag(email string) string {
	return flagPrefix + base64.StdEncoding.EncodeToString([]byte(email+flagSuffix))
}
