package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/workforce-api/internal/auth"
	"github.com/yukikurage/workforce-api/internal/config"
	"github.com/yukikurage/workforce-api/internal/dto"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/router"
	"github.com/yukikurage/workforce-api/internal/testutil"
)

const testPassword = "correct-horse-battery"

// apiSuite runs requests through the full router over an in-memory store.
type apiSuite struct {
	suite.Suite
	db     *gorm.DB
	tokens *auth.TokenManager
	router *gin.Engine
}

func (s *apiSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	gw := testutil.NewGateway(s.T())
	s.db = gw.DB()
	s.tokens = auth.NewTokenManager(config.AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	})
	hasher, err := auth.NewHasher(bcrypt.MinCost)
	s.Require().NoError(err)

	s.router = router.New(router.Deps{
		Gateway: gw,
		Tokens:  s.tokens,
		Hasher:  hasher,
		Logger:  zerolog.Nop(),
	})
}

// do sends body as JSON (when non-nil) with an optional bearer token.
func (s *apiSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *apiSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

// register signs an account up through the API.
func (s *apiSuite) register(email string, role models.UserRole) dto.AuthResponse {
	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email":     email,
		"password":  testPassword,
		"firstName": "Test",
		"lastName":  "User",
		"role":      role,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var res dto.AuthResponse
	s.decode(w, &res)
	return res
}

// accessToken signs an access token for a fixture user.
func (s *apiSuite) accessToken(user *models.User) string {
	pair, err := s.tokens.IssuePair(user)
	s.Require().NoError(err)
	return pair.AccessToken
}

func (s *apiSuite) createTask(token string, body gin.H) dto.TaskResponse {
	w := s.do(http.MethodPost, "/api/tasks", token, body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskResponse
	s.decode(w, &task)
	return task
}

func taskPath(id uint64) string {
	return fmt.Sprintf("/api/tasks/%d", id)
}

func (s *apiSuite) errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	s.decode(w, &body)
	return body.Code
}

func userPath(id uint64) string {
	return fmt.Sprintf("/api/users/%d", id)
}
