// Package config loads service settings from an optional .env file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Redis   RedisConfig
	Tracing TracingConfig
	Log     LogConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host    string
	Port    int
	TLSCert string
	TLSKey  string
}

// Addr is the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TLS reports whether both certificate and key are configured.
func (c ServerConfig) TLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// StoreConfig selects and configures the quote store.
type StoreConfig struct {
	Driver      string
	DatabaseURL string
	MaxConns    int
}

// RedisConfig enables per-IP rate limiting when Addr is set.
type RedisConfig struct {
	Addr          string
	RateLimit     int
	RateLimitSpan time.Duration
}

// TracingConfig controls span export and sampling.
type TracingConfig struct {
	Host        string
	SampleRatio float64
	Stdout      bool
}

// LogConfig sets the minimum log level.
type LogConfig struct {
	Level string
}

func defaults() map[string]any {
	return map[string]any{
		"host":                "0.0.0.0",
		"port":                3000,
		"store_driver":        DriverPostgres,
		"db_max_conns":        5,
		"rate_limit_requests": 100,
		"rate_limit_window":   "60s",
		"otel_sample_ratio":   1.0,
		"otel_stdout":         false,
		"log_level":           "info",
	}
}

// Load reads defaults, then envFile (skipped when missing), then the
// environment. Later sources win. Keys are environment variable names in
// lower case, e.g. DATABASE_URL is "database_url".
func Load(envFile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if envFile != "" {
		dot := koanf.New(".")
		err := dot.Load(file.Provider(envFile), dotenv.Parser())
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		default:
			for key, val := range dot.All() {
				if err := k.Set(strings.ToLower(key), val); err != nil {
					return nil, fmt.Errorf("applying %s: %w", envFile, err)
				}
			}
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:    k.String("host"),
			Port:    k.Int("port"),
			TLSCert: k.String("tls_cert"),
			TLSKey:  k.String("tls_key"),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(k.String("store_driver")),
			DatabaseURL: k.String("database_url"),
			MaxConns:    k.Int("db_max_conns"),
		},
		Redis: RedisConfig{
			Addr:      k.String("redis_addr"),
			RateLimit: k.Int("rate_limit_requests"),
		},
		Tracing: TracingConfig{
			Host:        k.String("otel_host"),
			SampleRatio: k.Float64("otel_sample_ratio"),
			Stdout:      k.Bool("otel_stdout"),
		},
		Log: LogConfig{
			Level: k.String("log_level"),
		},
	}

	span, err := time.ParseDuration(k.String("rate_limit_window"))
	if err != nil {
		return nil, fmt.Errorf("parsing RATE_LIMIT_WINDOW: %w", err)
	}
	cfg.Redis.RateLimitSpan = span

	return cfg, nil
}

// Validate reports every problem in c at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be 1-65535, got %d", c.Server.Port))
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		errs = append(errs, "TLS_CERT and TLS_KEY must be set together")
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres store")
		}
		if c.Store.MaxConns < 1 {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS must be positive, got %d", c.Store.MaxConns))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Store.Driver))
	}

	if c.Redis.Addr != "" {
		if c.Redis.RateLimit < 1 {
			errs = append(errs, fmt.Sprintf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Redis.RateLimit))
		}
		if c.Redis.RateLimitSpan < time.Second {
			errs = append(errs, fmt.Sprintf("RATE_LIMIT_WINDOW must be at least 1s, got %s", c.Redis.RateLimitSpan))
		}
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Sprintf("OTEL_SAMPLE_RATIO must be within [0, 1], got %g", c.Tracing.SampleRatio))
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
