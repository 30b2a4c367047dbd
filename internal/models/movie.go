package models

import "strings"

// Page 0 means the upstream default; the catalog serves at most 500 pages.

type MovieFilterQuery struct {
	Genre      string `query:"genre"`
	Popularity string `query:"popularity"`
	Title      string `query:"title"`
	Page       int    `query:"page" validate:"omitempty,min=1,max=500"`
}

// SortByPopularity reports whether the popularity flag is set. Any value
// other than an explicit false counts.
func (q MovieFilterQuery) SortByPopularity() bool {
	p := strings.TrimSpace(q.Popularity)
	if p == "" {
		return false
	}
	return !strings.EqualFold(p, "false") && p != "0"
}

type DiscoverQuery struct {
	GenreID  string `query:"id"`
	Keywords string `query:"keywords"`
	Page     int    `query:"page" validate:"omitempty,min=1,max=500"`
}

type SearchQuery struct {
	Term string `query:"term" validate:"required,notblank"`
	Page int    `query:"page" validate:"omitempty,min=1,max=500"`
}

type ListMoviesQuery struct {
	GenreID string `query:"id" validate:"required,number"`
	Page    int    `query:"page" validate:"omitempty,min=1,max=500"`
}

// PageQuery is accepted by the fixed lists (popular, upcoming, ...).
type PageQuery struct {
	Page int `query:"page" validate:"omitempty,min=1,max=500"`
}
