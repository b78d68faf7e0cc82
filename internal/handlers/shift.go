package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/utils"
)

type ShiftHandler struct {
	shiftService *services.ShiftService
}

func NewShiftHandler(shiftService *services.ShiftService) *ShiftHandler {
	return &ShiftHandler{
		shiftService: shiftService,
	}
}

// ListTeamShifts returns a team's schedule, optionally bounded by ?from&to.
func (h *ShiftHandler) ListTeamShifts(c *gin.Context) {
	team, ok := currentTeam(c)
	if !ok {
		return
	}
	h.list(c, repository.ShiftFilter{TeamID: &team.ID})
}

// ListMyShifts returns the caller's shifts across all teams.
func (h *ShiftHandler) ListMyShifts(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	userID := caller.UserID
	h.list(c, repository.ShiftFilter{UserID: &userID})
}

func (h *ShiftHandler) list(c *gin.Context, filter repository.ShiftFilter) {
	var q dto.ShiftQuery
	if !bindQuery(c, &q) {
		return
	}
	filter.From, filter.To = q.Bounds()
	filter.Page = utils.GetPagination(c)

	page, err := h.shiftService.ListShifts(c.Request.Context(), filter)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToShiftListResponse(page))
}

// CreateShift schedules a team member.
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	team, ok := currentTeam(c)
	if !ok {
		return
	}

	var req dto.ShiftRequest
	if !bindJSON(c, &req) {
		return
	}

	shift, err := h.shiftService.CreateShift(c.Request.Context(), caller, team, req.ToInput())
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToShiftResponse(*shift))
}

func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	team, ok := currentTeam(c)
	if !ok {
		return
	}
	shiftID, ok := idParam(c, "shiftId", "shift ID")
	if !ok {
		return
	}

	if err := h.shiftService.DeleteShift(c.Request.Context(), team, shiftID); err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shift deleted successfully",
	})
}
