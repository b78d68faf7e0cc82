package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/workforce-api/internal/constants"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/utils"
)

var errInvalidTaskID = apierrors.NewBadRequestError(apierrors.ErrCodeInvalidInput, "Invalid task ID")

// RequireTaskAccess checks if the user may read the task named by :id.
// Missing tasks are 404 and foreign tasks 403. Narrower checks such as
// delete rights stay with the service.
func RequireTaskAccess(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, ok := utils.ParseIDParam(c, "id")
		if !ok {
			apierrors.Abort(c, errInvalidTaskID)
			return
		}

		identity, ok := GetIdentity(c)
		if !ok {
			apierrors.Abort(c, apierrors.ErrUnauthorized)
			return
		}

		view, err := tasks.GetTask(c.Request.Context(), identity, taskID)
		if err != nil {
			apierrors.Abort(c, err)
			return
		}

		c.Set(constants.ContextKeyTask, view)
		c.Next()
	}
}

// GetTask returns the task view loaded by RequireTaskAccess.
func GetTask(c *gin.Context) (*models.TaskView, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	view, ok := v.(*models.TaskView)
	return view, ok
}
