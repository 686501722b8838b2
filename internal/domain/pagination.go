package domain

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based), saturating at
// maxInt instead of overflowing for absurd page numbers.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > maxInt/p.PageSize {
		return maxInt
	}
	return (p.Page - 1) * p.PageSize
}

// Slice returns the bounds [lo, hi) of the current page within a list of length n.
// A page past the end yields the empty range [n, n).
func (p PaginationParams) Slice(n int) (lo, hi int) {
	if p.PageSize < 1 {
		return 0, n
	}
	if p.Page > 1 && p.Page-1 > n/p.PageSize {
		return n, n
	}
	lo = p.Offset()
	if lo > n {
		lo = n
	}
	hi = n
	if n-lo > p.PageSize {
		hi = lo + p.PageSize
	}
	return lo, hi
}

const maxInt = int(^uint(0) >> 1)
