package dto

import (
	"time"

	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/query"
	"github.com/yukikurage/workforce-api/internal/services"
)

// TeamRequest is the body of POST /api/teams and PUT /api/teams/:id
type TeamRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255"`
}

// JoinTeamRequest is the body of POST /api/teams/join
type JoinTeamRequest struct {
	InviteCode string `json:"inviteCode" binding:"required,notblank,max=50"`
}

// BoardRequest is the body of POST /api/teams/:id/boards
type BoardRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=255"`
	Description string `json:"description" binding:"max=10000"`
}

// MessageRequest is the body of POST /api/teams/:id/messages
type MessageRequest struct {
	Body string `json:"body" binding:"required,notblank,max=2000"`
}

// TeamResponse represents a team in API responses. The invite code is
// shown only to the team's managers and admins.
type TeamResponse struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	ManagerID  uint64    `json:"managerId"`
	InviteCode string    `json:"inviteCode,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TeamMembershipResponse is a team together with the caller's role in it
type TeamMembershipResponse struct {
	TeamResponse
	Role     models.TeamRole `json:"role"`
	JoinedAt time.Time       `json:"joinedAt"`
}

// TeamMemberResponse represents a member in a team
type TeamMemberResponse struct {
	User     UserSummary     `json:"user"`
	Role     models.TeamRole `json:"role"`
	JoinedAt time.Time       `json:"joinedAt"`
}

// TeamDetailResponse represents detailed team information
type TeamDetailResponse struct {
	TeamResponse
	Members  []TeamMemberResponse `json:"members"`
	YourRole *models.TeamRole     `json:"yourRole"`
}

// BoardResponse represents a board
type BoardResponse struct {
	ID          uint64    `json:"id"`
	TeamID      uint64    `json:"teamId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MessageResponse is a channel post with its sender inlined
type MessageResponse struct {
	ID        uint64      `json:"id"`
	TeamID    uint64      `json:"teamId"`
	Sender    UserSummary `json:"sender"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"createdAt"`
}

// MessageListResponse is one page of channel posts, newest first
type MessageListResponse struct {
	Messages   []MessageResponse `json:"messages"`
	Pagination query.Meta        `json:"pagination"`
}

// ToTeamResponse converts a Team model
func ToTeamResponse(team models.Team, includeInviteCode bool) TeamResponse {
	resp := TeamResponse{
		ID:        team.ID,
		Name:      team.Name,
		ManagerID: team.ManagerID,
		CreatedAt: team.CreatedAt,
		UpdatedAt: team.UpdatedAt,
	}
	if includeInviteCode {
		resp.InviteCode = team.InviteCode
	}
	return resp
}

// ToTeamMembershipResponse converts a membership with its team loaded
func ToTeamMembershipResponse(m models.TeamMember) TeamMembershipResponse {
	return TeamMembershipResponse{
		TeamResponse: ToTeamResponse(m.Team, m.Role == models.TeamRoleManager),
		Role:         m.Role,
		JoinedAt:     m.JoinedAt,
	}
}

func ToUserSummary(u models.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name(), Email: u.Email}
}

// ToTeamDetailResponse converts a team with members
func ToTeamDetailResponse(team models.Team, members []models.TeamMember, you *models.TeamMember, showCode bool) TeamDetailResponse {
	out := make([]TeamMemberResponse, len(members))
	for i, m := range members {
		out[i] = TeamMemberResponse{
			User:     ToUserSummary(m.User),
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		}
	}

	resp := TeamDetailResponse{
		TeamResponse: ToTeamResponse(team, showCode),
		Members:      out,
	}
	if you != nil {
		role := you.Role
		resp.YourRole = &role
	}
	return resp
}

func ToBoardResponse(b models.Board) BoardResponse {
	return BoardResponse{
		ID:          b.ID,
		TeamID:      b.TeamID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func ToBoardResponses(boards []models.Board) []BoardResponse {
	out := make([]BoardResponse, len(boards))
	for i, b := range boards {
		out[i] = ToBoardResponse(b)
	}
	return out
}

func ToMessageResponse(m models.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		TeamID:    m.TeamID,
		Sender:    ToUserSummary(m.Sender),
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func ToMessageListResponse(page *services.MessagePage) MessageListResponse {
	out := make([]MessageResponse, len(page.Messages))
	for i, m := range page.Messages {
		out[i] = ToMessageResponse(m)
	}
	return MessageListResponse{Messages: out, Pagination: page.Pagination}
}
