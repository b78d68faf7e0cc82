package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/workforce-api/internal/auth"
	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/middleware"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/policy"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/utils"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// CreateTeam creates a team with the caller as its manager.
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req dto.TeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), caller, req.Name)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamResponse(*team, true))
}

// ListTeams returns the caller's teams, or every team for admins.
func (h *TeamHandler) ListTeams(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	teams, err := h.teamService.ListTeams(c.Request.Context(), caller)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	resp := make([]dto.TeamResponse, len(teams))
	for i, t := range teams {
		resp[i] = dto.ToTeamResponse(t, canSeeInviteCode(caller, t))
	}

	c.JSON(http.StatusOK, gin.H{
		"teams": resp,
	})
}

// JoinTeam adds the caller to the team owning the invite code.
func (h *TeamHandler) JoinTeam(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req dto.JoinTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.JoinTeamByInvite(c.Request.Context(), caller, req.InviteCode)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully joined team",
		"team":    dto.ToTeamResponse(*team, false),
	})
}

// GetTeam returns the team with its members.
func (h *TeamHandler) GetTeam(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	team, ok := currentTeam(c)
	if !ok {
		return
	}
	member, _ := middleware.GetTeamMember(c)

	members, err := h.teamService.ListMembers(c.Request.Context(), team.ID)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	showCode := policy.CanManageTeam(caller.Role, member).Allowed
	c.JSON(http.StatusOK, dto.ToTeamDetailResponse(*team, members, member, showCode))
}

// UpdateTeam renames a team.
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	team, ok := currentTeam(c)
	if !ok {
		return
	}

	var req dto.TeamRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.teamService.UpdateTeamName(c.Request.Context(), team, req.Name)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamResponse(*updated, true))
}

// DeleteTeam soft-deletes a team.
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	team, ok := currentTeam(c)
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(c.Request.Context(), team.ID); err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Team deleted successfully",
	})
}

// RegenerateInviteCode replaces the invite code; the old one stops working.
func (h *TeamHandler) RegenerateInviteCode(c *gin.Context) {
	team, ok := currentTeam(c)
	if !ok {
		return
	}

	updated, err := h.teamService.RegenerateInviteCode(c.Request.Context(), team)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inviteCode": updated.InviteCode,
	})
}

// RemoveMember removes a member from a team.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	team, ok := currentTeam(c)
	if !ok {
		return
	}
	targetID, ok := idParam(c, "userId", "user ID")
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), team, caller.UserID, targetID); err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

func (h *TeamHandler) ListBoards(c *gin.Context) {
	team, ok := currentTeam(c)
	if !ok {
		return
	}

	boards, err := h.teamService.ListBoards(c.Request.Context(), team.ID)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"boards": dto.ToBoardResponses(boards),
	})
}

func (h *TeamHandler) CreateBoard(c *gin.Context) {
	team, ok := currentTeam(c)
	if !ok {
		return
	}

	var req dto.BoardRequest
	if !bindJSON(c, &req) {
		return
	}

	board, err := h.teamService.CreateBoard(c.Request.Context(), team.ID, req.Name, req.Description)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBoardResponse(*board))
}

// ListMessages returns the team channel, newest first.
func (h *TeamHandler) ListMessages(c *gin.Context) {
	team, ok := currentTeam(c)
	if !ok {
		return
	}

	page, err := h.teamService.ListMessages(c.Request.Context(), team.ID, utils.GetPagination(c))
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageListResponse(page))
}

func (h *TeamHandler) PostMessage(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	team, ok := currentTeam(c)
	if !ok {
		return
	}

	var req dto.MessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.teamService.PostMessage(c.Request.Context(), team.ID, caller, req.Body)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageResponse(*msg))
}

func currentTeam(c *gin.Context) (*models.Team, bool) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.Abort(c, services.ErrTeamNotFound)
	}
	return team, ok
}

func canSeeInviteCode(caller auth.Identity, team models.Team) bool {
	return caller.Role == models.RoleAdmin || team.ManagerID == caller.UserID
}
