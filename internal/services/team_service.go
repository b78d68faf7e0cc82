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
	"github.com/yukikurage/workforce-api/internal/utils"
)

var (
	ErrTeamNotFound         = apierrors.NewNotFoundError("Team not found")
	ErrInvalidTeamName      = apierrors.NewValidationError("", apierrors.FieldError{Field: "name", Message: "name is required"})
	ErrInvalidInviteCode    = apierrors.NewNotFoundError("Invalid invite code")
	ErrAlreadyTeamMember    = apierrors.NewConflictError("User is already a member of this team")
	ErrCannotRemoveYourself = apierrors.NewBadRequestError(apierrors.ErrCodeInvalidInput, "Cannot remove yourself from the team")
	ErrCannotRemoveManager  = apierrors.NewBadRequestError(apierrors.ErrCodeInvalidInput, "Cannot remove the team manager")
	ErrTeamMemberNotFound   = apierrors.NewNotFoundError("Team member not found")
	ErrEmptyMessage         = apierrors.NewValidationError("", apierrors.FieldError{Field: "body", Message: "body is required"})
)

const inviteCodeAttempts = 3

// TeamService provides business logic for teams, their boards and their
// message channel. Membership checks happen in the team middleware.
type TeamService struct {
	store *repository.Store
}

// NewTeamService creates a new TeamService.
func NewTeamService(store *repository.Store) *TeamService {
	return &TeamService{store: store}
}

// CreateTeam creates a team managed by actor.
func (s *TeamService) CreateTeam(ctx context.Context, actor auth.Identity, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidTeamName
	}

	team := &models.Team{Name: name, ManagerID: actor.UserID}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := s.createWithCode(ctx, tx, team); err != nil {
			return err
		}
		return tx.Teams.AddMember(ctx, &models.TeamMember{
			TeamID:   team.ID,
			UserID:   actor.UserID,
			Role:     models.TeamRoleManager,
			JoinedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return team, nil
}

// createWithCode retries on the unlikely invite code collision.
func (s *TeamService) createWithCode(ctx context.Context, tx *repository.Store, team *models.Team) error {
	var err error
	for i := 0; i < inviteCodeAttempts; i++ {
		if team.InviteCode, err = utils.GenerateInviteCode(); err != nil {
			return err
		}
		// Savepoint so a collision does not poison the outer transaction.
		err = tx.Transaction(ctx, func(inner *repository.Store) error {
			return inner.Teams.Create(ctx, team)
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return err
}

// ListTeams returns every team for admins and the actor's teams otherwise.
func (s *TeamService) ListTeams(ctx context.Context, actor auth.Identity) ([]models.Team, error) {
	if actor.Role == models.RoleAdmin {
		teams, err := s.store.Teams.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list teams: %w", err)
		}
		return teams, nil
	}

	memberships, err := s.store.Teams.ListMembershipsByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	teams := make([]models.Team, 0, len(memberships))
	for _, m := range memberships {
		if m.Team.ID != 0 {
			teams = append(teams, m.Team)
		}
	}
	return teams, nil
}

// FindTeam returns a live team.
func (s *TeamService) FindTeam(ctx context.Context, teamID uint64) (*models.Team, error) {
	team, err := s.store.Teams.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

// FindMember returns the membership or nil when userID is not a member.
func (s *TeamService) FindMember(ctx context.Context, teamID, userID uint64) (*models.TeamMember, error) {
	member, err := s.store.Teams.FindMember(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}
	return member, nil
}

// ListMembers returns a team's members with users loaded.
func (s *TeamService) ListMembers(ctx context.Context, teamID uint64) ([]models.TeamMember, error) {
	members, err := s.store.Teams.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

// UpdateTeamName renames a team.
func (s *TeamService) UpdateTeamName(ctx context.Context, team *models.Team, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidTeamName
	}

	team.Name = name
	if err := s.store.Teams.Update(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

// DeleteTeam removes a team with its boards and memberships.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID uint64) error {
	if err := s.store.Teams.Delete(ctx, teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

// JoinTeamByInvite adds actor to the team owning code and notifies the
// team manager.
func (s *TeamService) JoinTeamByInvite(ctx context.Context, actor auth.Identity, code string) (*models.Team, error) {
	team, err := s.store.Teams.FindByInviteCode(ctx, utils.NormalizeInviteCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find team by invite code: %w", err)
	}

	if existing, err := s.FindMember(ctx, team.ID, actor.UserID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrAlreadyTeamMember
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Teams.AddMember(ctx, &models.TeamMember{
			TeamID:   team.ID,
			UserID:   actor.UserID,
			Role:     models.TeamRoleMember,
			JoinedAt: time.Now().UTC(),
		}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyTeamMember
			}
			return err
		}

		if team.ManagerID == actor.UserID {
			return nil
		}
		who := actor.Name
		if who == "" {
			who = actor.Email
		}
		teamID := team.ID
		return tx.Notifications.Create(ctx, &models.Notification{
			UserID:      team.ManagerID,
			Type:        models.NotificationTeamJoined,
			Title:       "New team member",
			Message:     fmt.Sprintf("%s joined %s", who, team.Name),
			RelatedType: "team",
			RelatedID:   &teamID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join team: %w", err)
	}

	return team, nil
}

// RegenerateInviteCode replaces the team's invite code.
func (s *TeamService) RegenerateInviteCode(ctx context.Context, team *models.Team) (*models.Team, error) {
	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}

	team.InviteCode = code
	if err := s.store.Teams.Update(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}
	return team, nil
}

// RemoveMember removes targetID from the team.
func (s *TeamService) RemoveMember(ctx context.Context, team *models.Team, actorID, targetID uint64) error {
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}
	if targetID == team.ManagerID {
		return ErrCannotRemoveManager
	}

	if err := s.store.Teams.RemoveMember(ctx, team.ID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamMemberNotFound
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// ListBoards returns the team's live boards.
func (s *TeamService) ListBoards(ctx context.Context, teamID uint64) ([]models.Board, error) {
	boards, err := s.store.Boards.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, nil
}

// CreateBoard adds a board to the team.
func (s *TeamService) CreateBoard(ctx context.Context, teamID uint64, name, description string) (*models.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierrors.NewValidationError("", apierrors.FieldError{Field: "name", Message: "name is required"})
	}

	board := &models.Board{TeamID: teamID, Name: name, Description: description}
	if err := s.store.Boards.Create(ctx, board); err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	return board, nil
}

// MessagePage is one page of channel messages, newest first.
type MessagePage struct {
	Messages   []models.Message
	Pagination query.Meta
}

func (s *TeamService) ListMessages(ctx context.Context, teamID uint64, page query.Page) (*MessagePage, error) {
	items, total, err := s.store.Messages.ListByTeam(ctx, teamID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return &MessagePage{Messages: items, Pagination: query.NewMeta(page, total)}, nil
}

func (s *TeamService) PostMessage(ctx context.Context, teamID uint64, sender auth.Identity, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	msg := &models.Message{TeamID: teamID, SenderID: sender.UserID, Body: body}
	if err := s.store.Messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}
	if user, err := s.store.Users.FindByID(ctx, sender.UserID); err == nil {
		msg.Sender = *user
	}
	return msg, nil
}
