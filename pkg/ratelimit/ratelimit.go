// Package ratelimit throttles API clients with a Redis sliding window.
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"quoteflow/pkg/logger"
)

const keyPrefix = "ratelimit:quotes:"

// Limiter allows at most limit requests per client IP within window.
type Limiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	log    *logger.Logger
}

// New creates a Limiter.
func New(client redis.Cmdable, limit int, window time.Duration, log *logger.Logger) *Limiter {
	return &Limiter{client: client, limit: limit, window: window, log: log}
}

// Middleware rejects over-limit clients with 429. Redis errors let the
// request through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		allowed, err := l.Allow(r.Context(), ip)
		if err != nil {
			l.log.Warn(r.Context(), "rate limiter unavailable, failing open", "error", err, "ip", ip)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Allow records a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	redisKey := keyPrefix + key
	windowStart := strconv.FormatInt(now.Add(-l.window).UnixMilli(), 10)

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", windowStart)
	count := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit pipeline: %w", err)
	}
	if count.Val() >= int64(l.limit) {
		return false, nil
	}

	// Rejected requests are not recorded.
	pipe = l.client.Pipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMilli()), Member: fmt.Sprintf("%d", now.UnixNano())})
	pipe.Expire(ctx, redisKey, l.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit pipeline: %w", err)
	}
	return true, nil
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
