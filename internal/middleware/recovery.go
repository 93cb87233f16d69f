package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/2beens/otpgate/internal/telemetry/metrics"
	"github.com/2beens/otpgate/pkg"
)

// PanicRecovery turns a handler panic into a 500 {error} response.
// http.ErrAbortHandler is passed on so net/http can abort the response.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if err, ok := recovered.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(recovered)
				}
				handlePanic(w, req, recovered, metricsManager)
			}()

			next.ServeHTTP(w, req)
		})
	}
}

func handlePanic(w http.ResponseWriter, req *http.Request, recovered any, metricsManager *metrics.Manager) {
	span := trace.SpanFromContext(req.Context())
	span.SetStatus(codes.Error, fmt.Sprintf("panic: %v", recovered))

	log.WithFields(log.Fields{
		"method": req.Method,
		"path":   req.URL.Path,
		"panic":  fmt.Sprint(recovered),
	}).Errorf("recovered from handler panic\n%s", debug.Stack())

	if metricsManager != nil {
		metricsManager.CounterHandleRequestPanic.Inc()
	}
	pkg.WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal error",
	})
}
