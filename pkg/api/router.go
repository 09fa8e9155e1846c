package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	_ "quoteflow/docs"
	"quoteflow/pkg/metrics"
	"quoteflow/pkg/otel"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig carries the optional collaborators of the router.
type RouterConfig struct {
	Tracer    trace.Tracer
	RateLimit func(http.Handler) http.Handler
	Store     Pinger
}

// NewRouter wires the handler's routes together with health, readiness,
// metrics and API docs endpoints.
func NewRouter(h *Handler, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	if cfg.Tracer != nil {
		r.Use(otel.Middleware(cfg.Tracer))
	}
	r.Use(metrics.Middleware)

	r.HandleFunc("/", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", readiness(cfg.Store)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/quotes").Subrouter()
	if cfg.RateLimit != nil {
		api.Use(cfg.RateLimit)
	}
	api.HandleFunc("", h.Create).Methods(http.MethodPost)
	api.HandleFunc("", h.List).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.Update).Methods(http.MethodPut)
	api.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	return r
}

func readiness(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
