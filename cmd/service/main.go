package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/otpgate/internal"
	"github.com/2beens/otpgate/internal/config"
	"github.com/2beens/otpgate/internal/logging"
	"github.com/2beens/otpgate/internal/token"
	"github.com/2beens/otpgate/pkg"
)

var errJWTSecretMissing = errors.New("JWT_SECRET env var not set")

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	if err := ensureLogsDir(cfg.LogsPath); err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	loggingOpts := logging.Options{
		FilePath:         cfg.LogsPath,
		AlsoStdout:       cfg.LogToStdout,
		Level:            cfg.LogLevel,
		JSON:             cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryServerName: "otpgate",
	}
	if cfg.SentryEnabled {
		loggingOpts.SentryDSN = sentryDSN
	}
	flushLogs := logging.Setup(loggingOpts)
	defer flushLogs()

	log.Debugf("using address: %s", cfg.Addr())
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)
	if cfg.SentryEnabled && sentryDSN == "" {
		log.Warnln("sentry enabled in config, but SENTRY_DSN env var not set")
	}

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	jwtSecret, err := resolveJWTSecret(cfg, os.Getenv("JWT_SECRET"))
	if err != nil {
		log.Fatalf("jwt secret: %s", err)
	}

	redisPassword := os.Getenv("REDIS_PASS")
	if cfg.StoreBackend == config.StoreBackendRedis && redisPassword == "" {
		log.Errorf("redis password not set. use REDIS_PASS")
	}

	honeycombEnabled := cfg.TracingEnabled || os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			JWTSecret:               jwtSecret,
			RedisPassword:           redisPassword,
			HoneycombTracingEnabled: honeycombEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve()

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	if err := server.GracefulShutdown(); err != nil {
		log.Errorf("graceful shutdown: %s", err)
	}
}

// resolveJWTSecret falls back to the well known default secret outside of
// production only. Tokens signed with it can be forged by anyone.
func resolveJWTSecret(cfg *config.Config, envSecret string) (string, error) {
	if envSecret != "" {
		return envSecret, nil
	}
	if cfg.IsProduction() {
		return "", errJWTSecretMissing
	}
	log.Errorf("%s, using insecure default secret; never do this outside local development", errJWTSecretMissing)
	return token.InsecureDefaultSecret, nil
}

func ensureLogsDir(logsPath string) error {
	if logsPath == "" {
		return nil
	}
	logsDir := filepath.Dir(logsPath)
	exists, err := pkg.PathExists(logsDir, true)
	if err != nil {
		return fmt.Errorf("check logs dir: %w", err)
	}
	if exists {
		return nil
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	return nil
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(pkg.BytesToString(stdout)), nil
}
