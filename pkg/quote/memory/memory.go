// Package memory implements an in-memory quote repository.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"quoteflow/pkg/quote"
)

// Repository provides an in-memory implementation of quote.Repository.
type Repository struct {
	mu     sync.RWMutex
	quotes map[uuid.UUID]quote.Quote
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{quotes: make(map[uuid.UUID]quote.Quote)}
}

// Create stores the quote.
func (r *Repository) Create(ctx context.Context, q quote.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes[q.ID] = q
	return nil
}

// Get retrieves a quote by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (quote.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quotes[id]
	if !ok {
		return quote.Quote{}, quote.ErrNotFound
	}
	return q, nil
}

// List returns at most limit quotes after skipping offset, ordered the same
// way as the Postgres repository.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]quote.Quote, error) {
	r.mu.RLock()
	all := make([]quote.Quote, 0, len(r.quotes))
	for _, q := range r.quotes {
		all = append(all, q)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].InsertedAt.Equal(all[j].InsertedAt) {
			return all[i].InsertedAt.Before(all[j].InsertedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	if offset >= len(all) {
		return []quote.Quote{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Update applies the changes to an existing quote.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, c quote.Changes) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok {
		return quote.ErrNotFound
	}
	q.Username = c.Username
	q.Text = c.Text
	q.UpdatedAt = c.UpdatedAt
	r.quotes[id] = q
	return nil
}

// Delete removes a quote by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quotes[id]; !ok {
		return quote.ErrNotFound
	}
	delete(r.quotes, id)
	return nil
}

// Ping always succeeds.
func (r *Repository) Ping(ctx context.Context) error {
	return nil
}
