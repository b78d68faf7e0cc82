package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/services"
)

// UserHandler serves account administration.
type UserHandler struct {
	authService *services.AuthService
}

func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// UpdateUser changes another user's role or status. Suspending an account
// revokes all of its refresh tokens.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	targetID, ok := idParam(c, "id", "user ID")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateUser(c.Request.Context(), caller, targetID, services.UpdateUserInput{
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(*user))
}
