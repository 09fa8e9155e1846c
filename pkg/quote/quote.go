// Package quote defines the quote record and the contract its stores fulfil.
package quote

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Quote is a single quotation attributed to a user.
type Quote struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Text       string    `json:"quote"`
	InsertedAt time.Time `json:"inserted_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IDFunc returns a fresh record identifier.
type IDFunc func() uuid.UUID

// Clock returns the current time.
type Clock func() time.Time

// New builds a record with a random v4 identifier stamped with the current time.
func New(username, text string) Quote {
	return Build(username, text, uuid.New, time.Now)
}

// Build is New with the identifier source and clock supplied by the caller.
func Build(username, text string, newID IDFunc, now Clock) Quote {
	ts := Timestamp(now)
	return Quote{
		ID:         newID(),
		Username:   username,
		Text:       text,
		InsertedAt: ts,
		UpdatedAt:  ts,
	}
}

// Timestamp reads the clock in UTC at microsecond precision, which is what a
// Postgres timestamptz column keeps.
func Timestamp(now Clock) time.Time {
	return now().UTC().Truncate(time.Microsecond)
}

// Changes are the fields an update is allowed to touch.
type Changes struct {
	Username  string
	Text      string
	UpdatedAt time.Time
}

// Repository defines behavior for persisting quotes.
type Repository interface {
	Create(ctx context.Context, q Quote) error
	Get(ctx context.Context, id uuid.UUID) (Quote, error)
	List(ctx context.Context, limit, offset int) ([]Quote, error)
	Update(ctx context.Context, id uuid.UUID, c Changes) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrNotFound indicates the requested quote does not exist.
var ErrNotFound = errors.New("quote not found")
