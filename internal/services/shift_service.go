package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/workforce-api/internal/auth"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/query"
	"github.com/yukikurage/workforce-api/internal/repository"
)

// MaxShiftLength bounds a single shift.
const MaxShiftLength = 24 * time.Hour

var (
	ErrShiftNotFound      = apierrors.NewNotFoundError("Shift not found")
	ErrShiftRange         = apierrors.NewValidationError("", apierrors.FieldError{Field: "endsAt", Message: "endsAt must be after startsAt and at most 24h later"})
	ErrShiftNotTeamMember = apierrors.NewBadRequestError(apierrors.ErrCodeInvalidAssignee, "Shift user must be an active member of the team")
	ErrShiftOverlap       = apierrors.NewConflictError("Shift overlaps an existing shift of this user")
)

// ShiftService schedules team members. Team access is checked by the team
// middleware before any of these run.
type ShiftService struct {
	store *repository.Store
}

func NewShiftService(store *repository.Store) *ShiftService {
	return &ShiftService{store: store}
}

// CreateShiftInput is a new shift for one member of a team.
type CreateShiftInput struct {
	UserID   uint64
	StartsAt time.Time
	EndsAt   time.Time
	Notes    string
}

// ShiftPage is one page of shifts ordered by start time.
type ShiftPage struct {
	Shifts     []models.Shift
	Pagination query.Meta
}

// CreateShift schedules input.UserID on team. The user must be an active
// member and must not already work during the period.
func (s *ShiftService) CreateShift(ctx context.Context, actor auth.Identity, team *models.Team, input CreateShiftInput) (*models.Shift, error) {
	start, end := input.StartsAt.UTC(), input.EndsAt.UTC()
	if !end.After(start) || end.Sub(start) > MaxShiftLength {
		return nil, ErrShiftRange
	}

	if _, err := s.store.Teams.FindMember(ctx, team.ID, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotTeamMember
		}
		return nil, fmt.Errorf("failed to find team member: %w", err)
	}
	user, err := s.store.Users.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotTeamMember
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive() {
		return nil, ErrShiftNotTeamMember
	}

	shift := &models.Shift{
		TeamID:    team.ID,
		UserID:    input.UserID,
		StartsAt:  start,
		EndsAt:    end,
		Notes:     strings.TrimSpace(input.Notes),
		CreatedBy: actor.UserID,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		overlap, err := tx.Shifts.HasOverlap(ctx, input.UserID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return ErrShiftOverlap
		}
		if err := tx.Shifts.Create(ctx, shift); err != nil {
			return err
		}

		if input.UserID == actor.UserID {
			return nil
		}
		teamID := team.ID
		return tx.Notifications.Create(ctx, &models.Notification{
			UserID:      input.UserID,
			Type:        models.NotificationShiftAdded,
			Title:       "New shift scheduled",
			Message:     fmt.Sprintf("%s: %s to %s", team.Name, start.Format(time.RFC3339), end.Format(time.RFC3339)),
			RelatedType: "team",
			RelatedID:   &teamID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}

	shift.User = *user
	return shift, nil
}

// ListShifts returns shifts overlapping [from, to). Either bound may be nil.
func (s *ShiftService) ListShifts(ctx context.Context, filter repository.ShiftFilter) (*ShiftPage, error) {
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, apierrors.NewValidationError("", apierrors.FieldError{Field: "to", Message: "to must be after from"})
	}

	items, total, err := s.store.Shifts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return &ShiftPage{Shifts: items, Pagination: query.NewMeta(filter.Page, total)}, nil
}

// DeleteShift removes a shift of team. Shifts of other teams look absent.
func (s *ShiftService) DeleteShift(ctx context.Context, team *models.Team, shiftID uint64) error {
	shift, err := s.store.Shifts.FindByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		return fmt.Errorf("failed to find shift: %w", err)
	}
	if shift.TeamID != team.ID {
		return ErrShiftNotFound
	}

	if err := s.store.Shifts.Delete(ctx, shiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return nil
}
