package quote

import "math"

const (
	// DefaultPage is used when no page is requested.
	DefaultPage = 1
	// DefaultPerPage is used when no page size is requested.
	DefaultPerPage = 30
	// MaxPerPage caps the page size.
	MaxPerPage = 100

	// maxPage keeps (page-1)*per_page from overflowing. Any page past it is
	// empty anyway.
	maxPage = math.MaxInt / MaxPerPage
)

// Pagination is an offset-based window over the quotes table.
type Pagination struct {
	Page    int
	PerPage int
}

// DefaultPagination returns the first page at the default size.
func DefaultPagination() Pagination {
	return Pagination{Page: DefaultPage, PerPage: DefaultPerPage}
}

// Normalize clamps Page to at least 1 and PerPage to [1, MaxPerPage].
func (p Pagination) Normalize() Pagination {
	switch {
	case p.Page < 1:
		p.Page = 1
	case p.Page > maxPage:
		p.Page = maxPage
	}
	switch {
	case p.PerPage < 1:
		p.PerPage = 1
	case p.PerPage > MaxPerPage:
		p.PerPage = MaxPerPage
	}
	return p
}

// Limit is the number of rows to read after normalization.
func (p Pagination) Limit() int {
	return p.Normalize().PerPage
}

// Offset is the number of rows to skip after normalization.
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}
