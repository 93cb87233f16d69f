package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/2beens/otpgate/pkg"
)

// Options of the process wide logrus logger.
type Options struct {
	// FilePath is the rotated log file; empty logs to stdout only.
	FilePath    string
	AlsoStdout  bool
	Level       string
	JSON        bool
	Environment string
	// SentryDSN enables error reporting to sentry when set.
	SentryDSN        string
	SentryServerName string
}

// Setup applies opts to the standard logrus logger. The returned func
// flushes buffered sentry events and is safe to call when sentry is off.
func Setup(opts Options) (flush func()) {
	logrus.SetLevel(ParseLevel(opts.Level))
	logrus.SetFormatter(newFormatter(opts.JSON))

	out, desc := newOutput(opts.FilePath, opts.AlsoStdout)
	logrus.SetOutput(out)
	logrus.Debugf("logs output: %s", desc)

	flush = func() {}
	if opts.SentryDSN == "" {
		return flush
	}
	if err := setupSentry(opts); err != nil {
		logrus.Errorf("sentry setup: %s", err)
		return flush
	}
	logrus.Infof("sentry reporting enabled for [%s]", opts.Environment)

	return func() {
		sentry.Flush(sentryFlushTimeout)
	}
}

// ParseLevel falls back to trace for unknown names.
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.TraceLevel
	}
	return lvl
}

func newFormatter(asJSON bool) logrus.Formatter {
	if asJSON {
		return &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano}
	}
	return &logrus.TextFormatter{FullTimestamp: true}
}

func newOutput(filePath string, alsoStdout bool) (io.Writer, string) {
	if filePath == "" {
		return os.Stdout, "stdout"
	}

	if filepath.Ext(filePath) != ".log" {
		filePath += ".log"
	}
	file := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    50, // megabytes
		MaxBackups: 10,
		MaxAge:     30, // days
		Compress:   true,
	}

	if alsoStdout {
		return pkg.NewCombinedWriter(os.Stdout, file), filePath + " and stdout"
	}
	return file, filePath
}

func setupSentry(opts Options) error {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              opts.SentryDSN,
		Environment:      opts.Environment,
		ServerName:       opts.SentryServerName,
		TracesSampleRate: 1.0,
	}); err != nil {
		return err
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	return nil
}
