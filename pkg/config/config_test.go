package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 3000},
		Store:   StoreConfig{Driver: DriverPostgres, DatabaseURL: "postgres://localhost/quotes", MaxConns: 5},
		Redis:   RedisConfig{RateLimit: 100, RateLimitSpan: time.Minute},
		Tracing: TracingConfig{SampleRatio: 1},
		Log:     LogConfig{Level: "info"},
	}
}

// clearEnv unsets keys for the duration of the test.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

var configKeys = []string{
	"HOST", "PORT", "TLS_CERT", "TLS_KEY", "STORE_DRIVER", "DATABASE_URL", "DB_MAX_CONNS",
	"REDIS_ADDR", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "OTEL_HOST", "OTEL_SAMPLE_RATIO", "OTEL_STDOUT", "LOG_LEVEL",
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, configKeys...)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Store.MaxConns)
	assert.Equal(t, 100, cfg.Redis.RateLimit)
	assert.Equal(t, time.Minute, cfg.Redis.RateLimitSpan)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Server.TLS())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	clearEnv(t, configKeys...)
	require.NoError(t, os.WriteFile(path, []byte("PORT=4000\nDATABASE_URL=postgres://file/quotes\nLOG_LEVEL=debug\n"), 0o600))

	t.Setenv("PORT", "5000")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("OTEL_STDOUT", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "postgres://file/quotes", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.RateLimitSpan)
	assert.True(t, cfg.Tracing.Stdout)
	assert.Equal(t, ":5000", ServerConfig{Port: 5000}.Addr())
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	clearEnv(t, configKeys...)
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}

func TestLoad_UnreadableEnvFile(t *testing.T) {
	clearEnv(t, configKeys...)
	dir := t.TempDir()

	_, err := Load(dir)

	require.Error(t, err)
	assert.ErrorContains(t, err, "loading "+dir)
}

func TestLoad_BadWindow(t *testing.T) {
	clearEnv(t, configKeys...)
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	_, err := Load("")
	assert.ErrorContains(t, err, "RATE_LIMIT_WINDOW")
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MemoryNeedsNoDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Store = StoreConfig{Driver: DriverMemory}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "PORT"},
		{"tls pair", func(c *Config) { c.Server.TLSCert = "cert.pem" }, "TLS_CERT and TLS_KEY"},
		{"database url", func(c *Config) { c.Store.DatabaseURL = "" }, "DATABASE_URL"},
		{"max conns", func(c *Config) { c.Store.MaxConns = 0 }, "DB_MAX_CONNS"},
		{"driver", func(c *Config) { c.Store.Driver = "mysql" }, "STORE_DRIVER"},
		{"rate limit", func(c *Config) { c.Redis.Addr = "localhost:6379"; c.Redis.RateLimit = 0 }, "RATE_LIMIT_REQUESTS"},
		{"window", func(c *Config) { c.Redis.Addr = "localhost:6379"; c.Redis.RateLimitSpan = 0 }, "RATE_LIMIT_WINDOW"},
		{"sample ratio", func(c *Config) { c.Tracing.SampleRatio = 2 }, "OTEL_SAMPLE_RATIO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: DriverPostgres}}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"PORT", "DATABASE_URL", "DB_MAX_CONNS"} {
		assert.Contains(t, err.Error(), want)
	}
}
