package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"

	"github.com/2beens/otpgate/internal/auth"
	"github.com/2beens/otpgate/internal/challenge"
	"github.com/2beens/otpgate/internal/config"
	"github.com/2beens/otpgate/internal/middleware"
	"github.com/2beens/otpgate/internal/store"
	"github.com/2beens/otpgate/internal/telemetry/metrics"
	"github.com/2beens/otpgate/internal/telemetry/tracing"
	"github.com/2beens/otpgate/internal/token"
	"github.com/2beens/otpgate/pkg"
)

const (
	maxRequestBodyBytes = 1 << 20
	shutdownTimeout     = 15 * time.Second
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config      *config.Config
	redisClient *redis.Client
	signer      *token.Signer
	flow        *auth.Flow

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	JWTSecret               string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	signer, err := token.NewSigner(params.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("new token signer: %w", err)
	}

	var (
		rdb             *redis.Client
		sessions        store.Store[auth.LoginSession]
		otps            store.Store[int]
		storeCollectors []prometheus.Collector
	)
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})

		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}

		sessions = store.NewRedis[auth.LoginSession](rdb, auth.SessionsKeyPrefix)
		otps = store.NewRedis[int](rdb, auth.OTPsKeyPrefix)
	default:
		memSessions := store.NewMemory[auth.LoginSession]()
		memOTPs := store.NewMemory[int]()
		sessions, otps = memSessions, memOTPs
		storeCollectors = append(storeCollectors,
			storeSizeGauge("login_sessions", "Login sessions held in memory", memSessions.Len),
			storeSizeGauge("pending_otps", "Pending OTPs held in memory", memOTPs.Len),
		)
	}
	log.Debugf("using [%s] store backend", cfg.StoreBackend)

	var random auth.Random
	switch cfg.RandomSource {
	case config.RandomSourceLegacy:
		log.Warnln("using legacy (predictable) random source for session ids and OTPs")
		random = auth.NewLegacyRandomFromClock()
	default:
		random = auth.NewSecureRandom()
	}

	promRegistry := metrics.NewRegistry("otpgate", storeCollectors...)
	metricsManager := metrics.NewManager("otpgate", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "otpgate")
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	flow := auth.NewFlow(auth.FlowParams{
		Sessions:       sessions,
		OTPs:           otps,
		Signer:         signer,
		Random:         random,
		MetricsManager: metricsManager,
	})

	return &Server{
		config:      cfg,
		redisClient: rdb,
		signer:      signer,
		flow:        flow,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func storeSizeGauge(name, help string, size func() int) prometheus.Collector {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "otpgate",
		Subsystem: "store",
		Name:      name,
		Help:      help,
	}, func() float64 {
		return float64(size())
	})
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("otpgate-router"))

	challengeHandler := challenge.NewHandler()
	challengeHandler.SetupRoutes(r)

	authHandler := auth.NewHandler(s.flow, s.config.IsProduction())
	authHandler.SetupRoutes(r)

	// all the rest - unhandled paths
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Tracef("not found: %s %s", r.Method, r.URL.Path)
		pkg.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.signer, s.metricsManager)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest(maxRequestBodyBytes))

	return r
}

func (s *Server) Serve() {
	router := s.routerSetup()

	addr := s.config.Addr()
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         addr,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", addr)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	if s.config.PrometheusMetricsPort != "" {
		go func() {
			log.Debugf(" > metrics listening on: [%s]", metricsAddr)
			err := s.metricsHttpServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("metrics service, listen and serve: %s", err)
			}
		}()
	}

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	ctx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		} else {
			log.Warnln("server shut down")
		}
	}

	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown metrics server: %w", shutdownErr))
		} else {
			log.Warnln("metrics server shut down")
		}
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis client: %w", closeErr))
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	return err
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed, http.StateHijacked:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
