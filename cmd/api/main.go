package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"quoteflow/pkg/api"
	"quoteflow/pkg/config"
	"quoteflow/pkg/logger"
	"quoteflow/pkg/otel"
	"quoteflow/pkg/quote"
	"quoteflow/pkg/quote/memory"
	pg "quoteflow/pkg/quote/postgres"
	"quoteflow/pkg/ratelimit"
	"quoteflow/pkg/server"
)

const serviceName = "quoteflow"

// @title QuoteFlow API
// @version 1.0
// @description API for managing quotes
// @host localhost:3000
// @BasePath /
func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.Log.Level), serviceName, otel.GetTraceID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error(context.Background(), "service stopped", "error", err)
	}
	log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	tp, shutdown, err := otel.InitTracing(log, otel.Config{
		ServiceName: serviceName,
		Host:        cfg.Tracing.Host,
		Probability: cfg.Tracing.SampleRatio,
		Stdout:      cfg.Tracing.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdown(context.Background())
	tracer := tp.Tracer(serviceName)

	repo, pinger, closeStore, err := openStore(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var limit func(http.Handler) http.Handler
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		limiter := ratelimit.New(rdb, cfg.Redis.RateLimit, cfg.Redis.RateLimitSpan, log)
		limit = limiter.Middleware
		log.Info(ctx, "rate limiting enabled", "requests", cfg.Redis.RateLimit, "window", cfg.Redis.RateLimitSpan.String())
	}

	h := api.NewHandler(repo, log)
	r := api.NewRouter(h, api.RouterConfig{
		Tracer:    tracer,
		RateLimit: limit,
		Store:     pinger,
	})

	return server.New(cfg.Server, r, log).Run(ctx)
}

func openStore(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (quote.Repository, api.Pinger, func() error, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn(ctx, "using in-memory store, data is lost on exit")
		repo := memory.New()
		return repo, repo, func() error { return nil }, nil
	}

	db, err := pg.Open(ctx, cfg.DatabaseURL, cfg.MaxConns)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("db connect: %w", err)
	}
	if err := pg.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("create table: %w", err)
	}
	log.Info(ctx, "connected to postgres", "max_conns", cfg.MaxConns)
	repo := pg.New(db)
	return repo, repo, db.Close, nil
}
