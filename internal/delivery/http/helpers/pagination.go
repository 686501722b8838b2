package helpers

import (
	"net/http"
	"strconv"

	"calendrier/internal/domain"
)

// Agenda pagination defaults and limits. MaxPage keeps the offset far from
// integer overflow while staying well past any real agenda.
const (
	DefaultPage     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
	MaxPage         = 100_000
)

// ParsePagination reads page and page_size from the agenda query string.
// Unparseable or non-positive values fall back to the defaults; larger ones
// are clamped to MaxPage and MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	return domain.PaginationParams{
		Page:     queryInt(q.Get("page"), DefaultPage, MaxPage),
		PageSize: queryInt(q.Get("page_size"), DefaultPageSize, MaxPageSize),
	}
}

func queryInt(s string, def, limit int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	if v > limit {
		return limit
	}
	return v
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta builds the meta block; TotalPages is 0 when pageSize is 0.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
