// Package postgres persists quotes in PostgreSQL through database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"quoteflow/pkg/quote"
)

// Schema creates the quotes table when it does not exist yet.
const Schema = `CREATE TABLE IF NOT EXISTS quotes (
	id          UUID PRIMARY KEY,
	username    TEXT NOT NULL,
	quote       TEXT NOT NULL,
	inserted_at TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
)`

// Open connects to dsn with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating quotes table: %w", err)
	}
	return nil
}

// Repository persists quotes in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new quote.
func (r *Repository) Create(ctx context.Context, q quote.Quote) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO quotes (id,username,quote,inserted_at,updated_at) VALUES ($1,$2,$3,$4,$5)",
		q.ID, q.Username, q.Text, q.InsertedAt, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting quote: %w", err)
	}
	return nil
}

// Get retrieves a quote by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (quote.Quote, error) {
	var q quote.Quote
	err := r.db.QueryRowContext(ctx,
		"SELECT id,username,quote,inserted_at,updated_at FROM quotes WHERE id=$1", id).
		Scan(&q.ID, &q.Username, &q.Text, &q.InsertedAt, &q.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return quote.Quote{}, quote.ErrNotFound
	}
	if err != nil {
		return quote.Quote{}, fmt.Errorf("querying quote: %w", err)
	}
	q.InsertedAt = q.InsertedAt.UTC()
	q.UpdatedAt = q.UpdatedAt.UTC()
	return q, nil
}

// List fetches one page of quotes, oldest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]quote.Quote, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id,username,quote,inserted_at,updated_at FROM quotes ORDER BY inserted_at, id LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]quote.Quote, 0, limit)
	for rows.Next() {
		var q quote.Quote
		if err := rows.Scan(&q.ID, &q.Username, &q.Text, &q.InsertedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}
		q.InsertedAt = q.InsertedAt.UTC()
		q.UpdatedAt = q.UpdatedAt.UTC()
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotes: %w", err)
	}
	return quotes, nil
}

// Update sets username, quote and updated_at on an existing row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, c quote.Changes) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE quotes SET username=$1, quote=$2, updated_at=$3 WHERE id=$4",
		c.Username, c.Text, c.UpdatedAt, id)
	if err != nil {
		return fmt.Errorf("updating quote: %w", err)
	}
	return affected(res)
}

// Delete removes a quote by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM quotes WHERE id=$1", id)
	if err != nil {
		return fmt.Errorf("deleting quote: %w", err)
	}
	return affected(res)
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return quote.ErrNotFound
	}
	return nil
}
