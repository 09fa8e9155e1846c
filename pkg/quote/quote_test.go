package quote

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	q := New("alice", "hello")

	require.NotEqual(t, uuid.Nil, q.ID)
	assert.Equal(t, "alice", q.Username)
	assert.Equal(t, "hello", q.Text)
	assert.Equal(t, q.InsertedAt, q.UpdatedAt)
	assert.Equal(t, time.UTC, q.InsertedAt.Location())
}

func TestNew_UniqueIDs(t *testing.T) {
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 1000; i++ {
		q := New("u", "q")
		require.False(t, seen[q.ID], "duplicate id %s", q.ID)
		seen[q.ID] = true
	}
}

func TestBuild(t *testing.T) {
	id := uuid.MustParse("6f1c2a7e-3b4d-4e5f-8a9b-0c1d2e3f4a5b")
	at := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.FixedZone("CET", 3600))

	q := Build("bob", "", func() uuid.UUID { return id }, func() time.Time { return at })

	assert.Equal(t, id, q.ID)
	assert.Equal(t, "", q.Text)
	assert.Equal(t, time.Date(2024, 3, 1, 11, 0, 0, 123456000, time.UTC), q.InsertedAt)
	assert.Equal(t, q.InsertedAt, q.UpdatedAt)
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name       string
		in         Pagination
		wantPage   int
		wantPer    int
		wantOffset int
	}{
		{"defaults", DefaultPagination(), 1, 30, 0},
		{"second page", Pagination{Page: 2, PerPage: 2}, 2, 2, 2},
		{"zero page", Pagination{Page: 0, PerPage: 10}, 1, 10, 0},
		{"negative page", Pagination{Page: -4, PerPage: 10}, 1, 10, 0},
		{"zero per page", Pagination{Page: 1, PerPage: 0}, 1, 1, 0},
		{"negative per page", Pagination{Page: 3, PerPage: -1}, 3, 1, 2},
		{"huge per page", Pagination{Page: 2, PerPage: 1000}, 2, 100, 100},
		{"upper bound", Pagination{Page: 1, PerPage: 100}, 1, 100, 0},
		{"overflowing page", Pagination{Page: math.MaxInt, PerPage: 100}, maxPage, 100, (maxPage - 1) * 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.in.Normalize()
			assert.Equal(t, tt.wantPage, n.Page)
			assert.Equal(t, tt.wantPer, n.PerPage)
			assert.Equal(t, tt.wantPer, tt.in.Limit())
			assert.Equal(t, tt.wantOffset, tt.in.Offset())
		})
	}
}
