package server

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteflow/pkg/config"
	"quoteflow/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.ServerConfig{Host: "127.0.0.1", Port: 0}
	s := New(cfg, http.NotFoundHandler(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_MissingCertificate(t *testing.T) {
	dir := t.TempDir()
	cfg := config.ServerConfig{
		Host:    "127.0.0.1",
		Port:    0,
		TLSCert: filepath.Join(dir, "server.crt"),
		TLSKey:  filepath.Join(dir, "server.key"),
	}
	s := New(cfg, http.NotFoundHandler(), testLogger())

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
}

func TestNew_Timeouts(t *testing.T) {
	s := New(config.ServerConfig{Host: "localhost", Port: 3000}, http.NotFoundHandler(), testLogger())

	assert.Equal(t, "localhost:3000", s.httpServer.Addr)
	assert.Equal(t, 15*time.Second, s.httpServer.ReadTimeout)
	assert.Equal(t, 60*time.Second, s.httpServer.IdleTimeout)
}
