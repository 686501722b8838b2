package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"calendrier/internal/domain"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  domain.PaginationParams
	}{
		{name: "defaults", query: "", want: domain.PaginationParams{Page: 1, PageSize: 50}},
		{name: "explicit", query: "?page=3&page_size=20", want: domain.PaginationParams{Page: 3, PageSize: 20}},
		{name: "page size capped", query: "?page_size=5000", want: domain.PaginationParams{Page: 1, PageSize: MaxPageSize}},
		{name: "huge page clamped", query: "?page=46116860184273881&page_size=200", want: domain.PaginationParams{Page: MaxPage, PageSize: 200}},
		{name: "page beyond int range", query: "?page=99999999999999999999999", want: domain.PaginationParams{Page: 1, PageSize: 50}},
		{name: "non positive", query: "?page=0&page_size=-3", want: domain.PaginationParams{Page: 1, PageSize: 50}},
		{name: "garbage", query: "?page=two&page_size=x", want: domain.PaginationParams{Page: 1, PageSize: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://test/events/agenda"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(r))
		})
	}
}

func TestNewPaginationMeta(t *testing.T) {
	assert.Equal(t, PaginationMeta{Page: 2, PageSize: 2, Total: 5, TotalPages: 3}, NewPaginationMeta(2, 2, 5))
	assert.Equal(t, PaginationMeta{Page: 1, PageSize: 50, Total: 0, TotalPages: 0}, NewPaginationMeta(1, 50, 0))
	assert.Equal(t, 0, NewPaginationMeta(1, 0, 7).TotalPages)
}
