package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yukikurage/workforce-api/internal/auth"
	"github.com/yukikurage/workforce-api/internal/constants"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/services"
)

// RequireAuth verifies the bearer access token, loads the account and
// rejects accounts that are no longer active.
func RequireAuth(tokens *auth.TokenManager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.Abort(c, apierrors.ErrUnauthorized)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			apierrors.Abort(c, auth.ErrTokenInvalid)
			return
		}

		claims, err := tokens.VerifyAccess(strings.TrimSpace(parts[1]))
		if err != nil {
			apierrors.Abort(c, err)
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.Abort(c, auth.ErrTokenInvalid)
				return
			}
			apierrors.Abort(c, err)
			return
		}
		if !user.IsActive() {
			apierrors.Abort(c, services.ErrAccountInactive)
			return
		}

		// Role and email come from the row, not the token, so a demotion
		// takes effect before the access token expires.
		c.Set(constants.ContextKeyIdentity, auth.Identity{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
			Name:   user.Name(),
		})
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Next()
	}
}

// RequireRole allows only the given roles. It must run after RequireAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			apierrors.Abort(c, apierrors.ErrUnauthorized)
			return
		}
		for _, r := range roles {
			if identity.Role == r {
				c.Next()
				return
			}
		}
		apierrors.Abort(c, apierrors.NewForbiddenError("Insufficient role"))
	}
}

// GetIdentity retrieves the authenticated principal from context
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
