package query

import "github.com/yukikurage/workforce-api/internal/constants"

// Page is a normalized page request.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps number to >= 1 and limit to [MinPageSize, MaxPageSize].
// Callers apply DefaultPageSize when no limit was requested.
func NewPage(number, limit int) Page {
	if number < constants.MinPage {
		number = constants.MinPage
	}
	switch {
	case limit < constants.MinPageSize:
		limit = constants.MinPageSize
	case limit > constants.MaxPageSize:
		limit = constants.MaxPageSize
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Meta is the pagination block returned with list responses.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewMeta derives totals for p given total matching rows.
func NewMeta(p Page, total int64) Meta {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Meta{
		Page:       p.Number,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Number < totalPages,
		HasPrev:    p.Number > 1,
	}
}
