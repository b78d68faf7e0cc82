package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/metrics"
	"github.com/yukikurage/workforce-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Register(c.Request.Context(), req.ToInput())
	recordAuth("register", err)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAuthResponse(res))
}

// Login authenticates a user and issues a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	recordAuth("login", err)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAuthResponse(res))
}

// Refresh rotates a refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	recordAuth("refresh", err)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{Tokens: dto.ToTokensResponse(pair)})
}

// Logout revokes the given refresh token, or all of the caller's tokens.
func (h *AuthHandler) Logout(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req dto.LogoutRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	err := h.authService.Logout(c.Request.Context(), caller.UserID, req.RefreshToken)
	recordAuth("logout", err)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	profile, err := h.authService.Me(c.Request.Context(), caller.UserID)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMeResponse(profile))
}

func recordAuth(event string, err error) {
	result := "success"
	if err != nil {
		result = apierrors.Classify(err).Code
	}
	metrics.AuthEventsTotal.WithLabelValues(event, result).Inc()
}
