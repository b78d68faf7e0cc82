package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/workforce-api/internal/dto"
	"github.com/yukikurage/workforce-api/internal/models"
)

type NotificationHandlerTestSuite struct {
	apiSuite
}

func TestNotificationHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationHandlerTestSuite))
}

func (s *NotificationHandlerTestSuite) TestAssignmentNotificationLifecycle() {
	manager := s.register("m@example.com", models.RoleManager)
	worker := s.register("w@example.com", models.RoleEmployee)
	token := worker.Tokens.AccessToken

	s.createTask(manager.Tokens.AccessToken, gin.H{"title": "Ship it", "assignedTo": worker.User.ID})
	s.createTask(manager.Tokens.AccessToken, gin.H{"title": "Test it", "assignedTo": worker.User.ID})

	w := s.do(http.MethodGet, "/api/notifications?unread=true", token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var page dto.NotificationListResponse
	s.decode(w, &page)
	s.Require().Len(page.Notifications, 2)
	s.Equal(models.NotificationTaskAssigned, page.Notifications[0].Type)

	w = s.do(http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", page.Notifications[0].ID), token, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	// Someone else's notification looks absent.
	w = s.do(http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", page.Notifications[1].ID), manager.Tokens.AccessToken, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/auth/me", token, nil)
	var me dto.MeResponse
	s.decode(w, &me)
	s.Equal(int64(1), me.UnreadNotifications)

	w = s.do(http.MethodPatch, "/api/notifications/read-all", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var marked struct {
		Updated int64 `json:"updated"`
	}
	s.decode(w, &marked)
	s.Equal(int64(1), marked.Updated)

	w = s.do(http.MethodGet, "/api/notifications?unread=true", token, nil)
	s.decode(w, &page)
	s.Empty(page.Notifications)
}
