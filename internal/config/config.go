package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"

	RandomSourceSecure = "secure"
	RandomSourceLegacy = "legacy"
)

type Config struct {
	// Environment is filled in from the toml section name.
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics & tracing
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	TracingEnabled        bool   `toml:"tracing_enabled"`

	// login sessions & pending OTPs
	StoreBackend string `toml:"store_backend"`
	RedisHost    string `toml:"redis_host"`
	RedisPort    string `toml:"redis_port"`

	RandomSource   string   `toml:"random_source"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
		env = EnvDevelopment
	case "prod", "production":
		cfg = t.Production
		env = EnvProduction
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config section for env [%s] missing", env)
	}
	cfg.Environment = env
	return cfg, nil
}

// Load reads the toml file at path and returns the section for env,
// with defaults applied and values validated.
func Load(env, path string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(path, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlConfig.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", cfg.Environment, err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 3000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.StoreBackend == "" {
		c.StoreBackend = StoreBackendMemory
	}
	if c.RandomSource == "" {
		c.RandomSource = RandomSourceSecure
	}
}

func (c *Config) Validate() error {
	var err error
	if c.Port < 0 || c.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("port out of range: %d", c.Port))
	}
	switch c.StoreBackend {
	case StoreBackendMemory:
	case StoreBackendRedis:
		if c.RedisHost == "" || c.RedisPort == "" {
			err = multierr.Append(err, errors.New("redis store backend needs redis_host and redis_port"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unknown store_backend: %s", c.StoreBackend))
	}
	switch c.RandomSource {
	case RandomSourceSecure, RandomSourceLegacy:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown random_source: %s", c.RandomSource))
	}
	return err
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, c.RedisPort)
}
