package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/testutil"
)

type AuthHandlerTestSuite struct {
	apiSuite
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) TestRegister_Success() {
	res := s.register("new@example.com", "")

	s.Equal("new@example.com", res.User.Email)
	s.Equal(models.RoleEmployee, res.User.Role)
	s.Equal(models.UserStatusActive, res.User.Status)
	s.Equal("Bearer", res.Tokens.TokenType)
	s.NotEmpty(res.Tokens.AccessToken)
	s.NotEmpty(res.Tokens.RefreshToken)
}

func (s *AuthHandlerTestSuite) TestRegister_Validation() {
	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email":     "not-an-email",
		"password":  "short",
		"firstName": "A",
		"lastName":  "B",
	})

	s.Equal(http.StatusBadRequest, w.Code)
	var body apierrors.APIError
	s.decode(w, &body)
	s.Equal(apierrors.ErrCodeValidation, body.Code)
	s.NotEmpty(body.Details)
}

func (s *AuthHandlerTestSuite) TestRegister_DuplicateEmail() {
	s.register("dup@example.com", "")

	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email":     "dup@example.com",
		"password":  testPassword,
		"firstName": "Again",
		"lastName":  "User",
	})

	s.Equal(http.StatusConflict, w.Code)
	s.Equal(apierrors.ErrCodeConflict, s.errorCode(w))
}

func (s *AuthHandlerTestSuite) TestLogin_IdenticalFailures() {
	s.register("known@example.com", "")

	wrongPassword := s.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "known@example.com",
		"password": "wrong-password",
	})
	unknownEmail := s.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "wrong-password",
	})

	s.Equal(http.StatusUnauthorized, wrongPassword.Code)
	s.Equal(wrongPassword.Code, unknownEmail.Code)
	s.JSONEq(wrongPassword.Body.String(), unknownEmail.Body.String())
	s.Equal(apierrors.ErrCodeInvalidCredentials, s.errorCode(wrongPassword))
}

func (s *AuthHandlerTestSuite) TestLogin_Success() {
	s.register("login@example.com", models.RoleManager)

	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "login@example.com",
		"password": testPassword,
	})

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.AuthResponse
	s.decode(w, &res)
	s.Equal(models.RoleManager, res.User.Role)
	s.NotNil(res.User.LastLoginAt)
}

func (s *AuthHandlerTestSuite) TestLogin_InactiveAccount() {
	res := s.register("gone@example.com", "")
	s.Require().NoError(s.db.Model(&models.User{}).Where("id = ?", res.User.ID).
		Update("status", models.UserStatusSuspended).Error)

	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "gone@example.com",
		"password": testPassword,
	})

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(apierrors.ErrCodeAccountInactive, s.errorCode(w))

	// The previously issued access token stops working too.
	w = s.do(http.MethodGet, "/api/auth/me", res.Tokens.AccessToken, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *AuthHandlerTestSuite) TestRefresh_RotationRejectsOldToken() {
	res := s.register("rotate@example.com", "")

	w := s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": res.Tokens.RefreshToken})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var rotated dto.RefreshResponse
	s.decode(w, &rotated)
	s.NotEqual(res.Tokens.RefreshToken, rotated.Tokens.RefreshToken)

	w = s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": res.Tokens.RefreshToken})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(apierrors.ErrCodeTokenRevoked, s.errorCode(w))

	// Reuse revoked the successor as well.
	w = s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": rotated.Tokens.RefreshToken})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *AuthHandlerTestSuite) TestRefresh_Garbage() {
	w := s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": "not.a.jwt"})

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(apierrors.ErrCodeTokenInvalid, s.errorCode(w))
}

func (s *AuthHandlerTestSuite) TestLogout_RevokesRefreshToken() {
	res := s.register("bye@example.com", "")

	w := s.do(http.MethodPost, "/api/auth/logout", res.Tokens.AccessToken, gin.H{"refreshToken": res.Tokens.RefreshToken})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": res.Tokens.RefreshToken})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *AuthHandlerTestSuite) TestLogout_WithoutBodyEndsAllSessions() {
	res := s.register("all@example.com", "")

	w := s.do(http.MethodPost, "/api/auth/logout", res.Tokens.AccessToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": res.Tokens.RefreshToken})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *AuthHandlerTestSuite) TestLogout_RequiresAuth() {
	w := s.do(http.MethodPost, "/api/auth/logout", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *AuthHandlerTestSuite) TestMe() {
	res := s.register("me@example.com", "")

	w := s.do(http.MethodGet, "/api/auth/me", res.Tokens.AccessToken, nil)

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var me dto.MeResponse
	s.decode(w, &me)
	s.Equal(res.User.ID, me.User.ID)
	s.Empty(me.Teams)
	s.Zero(me.UnreadNotifications)
}

func (s *AuthHandlerTestSuite) TestMe_Unauthorized() {
	w := s.do(http.MethodGet, "/api/auth/me", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/auth/me", "garbage", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(apierrors.ErrCodeTokenInvalid, s.errorCode(w))
}

func (s *AuthHandlerTestSuite) TestUpdateUser_AdminOnly() {
	admin := testutil.CreateUser(s.T(), s.db, "admin@example.com", models.RoleAdmin)
	target := s.register("target@example.com", "")

	w := s.do(http.MethodPatch, "/api/users/1", target.Tokens.AccessToken, gin.H{"role": "manager"})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPatch, userPath(target.User.ID), s.accessToken(admin), gin.H{"status": "suspended"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.UserResponse
	s.decode(w, &updated)
	s.Equal(models.UserStatusSuspended, updated.Status)

	// Suspension revokes outstanding refresh tokens.
	w = s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": target.Tokens.RefreshToken})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *AuthHandlerTestSuite) TestUpdateUser_Self() {
	admin := testutil.CreateUser(s.T(), s.db, "admin@example.com", models.RoleAdmin)

	w := s.do(http.MethodPatch, userPath(admin.ID), s.accessToken(admin), gin.H{"role": "employee"})
	s.Equal(http.StatusForbidden, w.Code)
}
