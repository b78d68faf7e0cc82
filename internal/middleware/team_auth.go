package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/workforce-api/internal/constants"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/policy"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/utils"
)

var errInvalidTeamID = apierrors.NewBadRequestError(apierrors.ErrCodeInvalidInput, "Invalid team ID")

// RequireTeamAccess loads the team named by :id and checks that the user is
// a member of it. Admins and managers pass without membership.
func RequireTeamAccess(teams *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := utils.ParseIDParam(c, "id")
		if !ok {
			apierrors.Abort(c, errInvalidTeamID)
			return
		}

		identity, ok := GetIdentity(c)
		if !ok {
			apierrors.Abort(c, apierrors.ErrUnauthorized)
			return
		}

		team, err := teams.FindTeam(c.Request.Context(), teamID)
		if err != nil {
			apierrors.Abort(c, err)
			return
		}

		member, err := teams.FindMember(c.Request.Context(), teamID, identity.UserID)
		if err != nil {
			apierrors.Abort(c, err)
			return
		}
		if member == nil && !identity.Role.Privileged() {
			apierrors.Abort(c, apierrors.NewForbiddenError("You are not a member of this team"))
			return
		}

		// Store team and membership in context
		c.Set(constants.ContextKeyTeam, team)
		if member != nil {
			c.Set(constants.ContextKeyTeamMember, member)
		}
		c.Next()
	}
}

// RequireTeamManager allows admins and the team's managers. It must run
// after RequireTeamAccess.
func RequireTeamManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			apierrors.Abort(c, apierrors.ErrUnauthorized)
			return
		}

		member, _ := GetTeamMember(c)
		if d := policy.CanManageTeam(identity.Role, member); !d.Allowed {
			apierrors.Abort(c, apierrors.NewForbiddenError(d.Reason))
			return
		}
		c.Next()
	}
}

// GetTeam returns the team loaded by RequireTeamAccess.
func GetTeam(c *gin.Context) (*models.Team, bool) {
	v, exists := c.Get(constants.ContextKeyTeam)
	if !exists {
		return nil, false
	}
	team, ok := v.(*models.Team)
	return team, ok
}

// GetTeamMember returns the caller's membership, if any.
func GetTeamMember(c *gin.Context) (*models.TeamMember, bool) {
	v, exists := c.Get(constants.ContextKeyTeamMember)
	if !exists {
		return nil, false
	}
	member, ok := v.(*models.TeamMember)
	return member, ok
}
