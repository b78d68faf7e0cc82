package dto

import (
	"time"

	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/query"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/validation"
)

// ShiftRequest is the body of POST /api/teams/:id/shifts
type ShiftRequest struct {
	UserID   uint64 `json:"userId" binding:"required,gt=0"`
	StartsAt string `json:"startsAt" binding:"required,isodate"`
	EndsAt   string `json:"endsAt" binding:"required,isodate"`
	Notes    string `json:"notes" binding:"max=2000"`
}

// ToInput assumes the request already passed binding validation.
func (r ShiftRequest) ToInput() services.CreateShiftInput {
	start, _ := validation.ParseDate(r.StartsAt)
	end, _ := validation.ParseDate(r.EndsAt)
	return services.CreateShiftInput{
		UserID:   r.UserID,
		StartsAt: start,
		EndsAt:   end,
		Notes:    r.Notes,
	}
}

// ShiftQuery bounds shift listings; both ends are optional
type ShiftQuery struct {
	From string `form:"from" binding:"omitempty,isodate"`
	To   string `form:"to" binding:"omitempty,isodate"`
}

// Bounds returns the parsed range.
func (q ShiftQuery) Bounds() (from, to *time.Time) {
	if t, err := validation.ParseDate(q.From); err == nil && q.From != "" {
		from = &t
	}
	if t, err := validation.ParseDate(q.To); err == nil && q.To != "" {
		to = &t
	}
	return from, to
}

// ShiftResponse is a shift with its worker inlined
type ShiftResponse struct {
	ID        uint64      `json:"id"`
	TeamID    uint64      `json:"teamId"`
	User      UserSummary `json:"user"`
	StartsAt  time.Time   `json:"startsAt"`
	EndsAt    time.Time   `json:"endsAt"`
	Notes     string      `json:"notes"`
	CreatedBy uint64      `json:"createdBy"`
	CreatedAt time.Time   `json:"createdAt"`
}

type ShiftListResponse struct {
	Shifts     []ShiftResponse `json:"shifts"`
	Pagination query.Meta      `json:"pagination"`
}

func ToShiftResponse(s models.Shift) ShiftResponse {
	return ShiftResponse{
		ID:        s.ID,
		TeamID:    s.TeamID,
		User:      ToUserSummary(s.User),
		StartsAt:  s.StartsAt,
		EndsAt:    s.EndsAt,
		Notes:     s.Notes,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
	}
}

func ToShiftListResponse(page *services.ShiftPage) ShiftListResponse {
	out := make([]ShiftResponse, len(page.Shifts))
	for i, s := range page.Shifts {
		out[i] = ToShiftResponse(s)
	}
	return ShiftListResponse{Shifts: out, Pagination: page.Pagination}
}
