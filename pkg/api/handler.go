// Package api serves the quotes HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"quoteflow/pkg/logger"
	"quoteflow/pkg/metrics"
	"quoteflow/pkg/otel"
	"quoteflow/pkg/quote"
)

// Handler serves quote requests against a single repository. It holds no
// per-request state.
type Handler struct {
	repo  quote.Repository
	log   *logger.Logger
	newID quote.IDFunc
	now   quote.Clock
}

// Option customizes a Handler.
type Option func(*Handler)

// WithClock replaces time.Now.
func WithClock(now quote.Clock) Option {
	return func(h *Handler) { h.now = now }
}

// WithIDFunc replaces uuid.New.
func WithIDFunc(newID quote.IDFunc) Option {
	return func(h *Handler) { h.newID = newID }
}

// NewHandler creates a Handler backed by repo.
func NewHandler(repo quote.Repository, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		repo:  repo,
		log:   log,
		newID: uuid.New,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health reports that the process is up.
// @Summary Liveness probe
// @Success 200
// @Router / [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Create stores a new quote.
// @Summary Create quote
// @Accept json
// @Produce json
// @Param quote body QuoteRequest true "Quote"
// @Success 201 {object} quote.Quote
// @Failure 400
// @Failure 500
// @Router /quotes [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createQuoteHandler")
	defer span.End()

	req, err := decodeQuoteRequest(w, r)
	if err != nil {
		h.badRequest(ctx, w, err)
		return
	}

	q := quote.Build(*req.Username, *req.Quote, h.newID, h.now)
	span.SetAttributes(attribute.String("quote.id", q.ID.String()))
	if err := h.repo.Create(ctx, q); err != nil {
		h.storeFailure(ctx, w, span, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// List returns one page of quotes.
// @Summary List quotes
// @Produce json
// @Param page query int false "Page number, 1-based" default(1)
// @Param per_page query int false "Page size, 1 to 100" default(30)
// @Success 200 {array} quote.Quote
// @Failure 400
// @Failure 500
// @Router /quotes [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listQuotesHandler")
	defer span.End()

	p, err := parsePagination(r.URL.Query())
	if err != nil {
		h.badRequest(ctx, w, err)
		return
	}
	span.SetAttributes(attribute.Int("page", p.Page), attribute.Int("per_page", p.PerPage))

	quotes, err := h.repo.List(ctx, p.Limit(), p.Offset())
	if err != nil {
		h.storeFailure(ctx, w, span, "list", err)
		return
	}
	if quotes == nil {
		quotes = []quote.Quote{}
	}
	writeJSON(w, http.StatusOK, quotes)
}

// Get returns a single quote.
// @Summary Get quote
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} quote.Quote
// @Failure 400
// @Failure 404
// @Failure 500
// @Router /quotes/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getQuoteHandler")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		h.badRequest(ctx, w, err)
		return
	}
	span.SetAttributes(attribute.String("quote.id", id.String()))

	q, err := h.repo.Get(ctx, id)
	if errors.Is(err, quote.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.storeFailure(ctx, w, span, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Update replaces the username and text of a quote and bumps updated_at.
// @Summary Update quote
// @Accept json
// @Param id path string true "Quote ID" format(uuid)
// @Param quote body QuoteRequest true "Quote"
// @Success 200
// @Failure 400
// @Failure 404
// @Failure 500
// @Router /quotes/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateQuoteHandler")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		h.badRequest(ctx, w, err)
		return
	}
	span.SetAttributes(attribute.String("quote.id", id.String()))

	req, err := decodeQuoteRequest(w, r)
	if err != nil {
		h.badRequest(ctx, w, err)
		return
	}

	err = h.repo.Update(ctx, id, quote.Changes{
		Username:  *req.Username,
		Text:      *req.Quote,
		UpdatedAt: quote.Timestamp(h.now),
	})
	if errors.Is(err, quote.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.storeFailure(ctx, w, span, "update", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Delete removes a quote.
// @Summary Delete quote
// @Param id path string true "Quote ID" format(uuid)
// @Success 200
// @Failure 400
// @Failure 404
// @Failure 500
// @Router /quotes/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteQuoteHandler")
	defer span.End()

	id, err := pathID(r)
	if err != nil {
		h.badRequest(ctx, w, err)
		return
	}
	span.SetAttributes(attribute.String("quote.id", id.String()))

	err = h.repo.Delete(ctx, id)
	if errors.Is(err, quote.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.storeFailure(ctx, w, span, "delete", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) badRequest(ctx context.Context, w http.ResponseWriter, err error) {
	h.log.Debug(ctx, "rejected request", "error", err)
	w.WriteHeader(http.StatusBadRequest)
}

// storeFailure answers 500 without a body; the cause only goes to logs,
// metrics and the span.
func (h *Handler) storeFailure(ctx context.Context, w http.ResponseWriter, span trace.Span, op string, err error) {
	h.log.Error(ctx, op+" quote", "error", err)
	metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	w.WriteHeader(http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
