package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/workforce-api/internal/auth"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/middleware"
	"github.com/yukikurage/workforce-api/internal/utils"
	"github.com/yukikurage/workforce-api/internal/validation"
)

// bindJSON binds and validates the body, aborting with a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.Abort(c, validation.Translate(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		apierrors.Abort(c, validation.Translate(err))
		return false
	}
	return true
}

// identity returns the authenticated caller or aborts with 401.
func identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Abort(c, apierrors.ErrUnauthorized)
	}
	return id, ok
}

func idParam(c *gin.Context, name, label string) (uint64, bool) {
	id, ok := utils.ParseIDParam(c, name)
	if !ok {
		apierrors.Abort(c, apierrors.NewBadRequestError(apierrors.ErrCodeInvalidInput, "Invalid "+label))
	}
	return id, ok
}
