package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/testutil"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	apiSuite
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

func (s *TaskHandlerTestSuite) list(token, query string) dto.TaskListResponse {
	w := s.do(http.MethodGet, "/api/tasks"+query, token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var res dto.TaskListResponse
	s.decode(w, &res)
	return res
}

// Employee A owns a task, manager B can read, edit and delete it, employee
// C can neither see nor fetch it.
func (s *TaskHandlerTestSuite) TestOwnershipScenario() {
	a := s.register("a@example.com", models.RoleEmployee)
	b := s.register("b@example.com", models.RoleManager)
	c := s.register("c@example.com", models.RoleEmployee)

	task := s.createTask(a.Tokens.AccessToken, gin.H{
		"title":      "Write quarterly report",
		"assignedTo": a.User.ID,
	})
	s.Equal(a.User.ID, task.CreatedBy)
	s.Require().NotNil(task.AssignedTo)
	s.Equal(a.User.ID, *task.AssignedTo)

	w := s.do(http.MethodGet, taskPath(task.ID), c.Tokens.AccessToken, nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(apierrors.ErrCodeForbidden, s.errorCode(w))

	listed := s.list(c.Tokens.AccessToken, "")
	s.Empty(listed.Tasks)
	s.Zero(listed.Pagination.Total)

	w = s.do(http.MethodGet, taskPath(task.ID), b.Tokens.AccessToken, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPut, taskPath(task.ID), b.Tokens.AccessToken, gin.H{"priority": "urgent"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.TaskResponse
	s.decode(w, &updated)
	s.Equal(models.TaskPriorityUrgent, updated.Priority)
	s.Equal(a.User.ID, updated.CreatedBy)

	w = s.do(http.MethodDelete, taskPath(task.ID), b.Tokens.AccessToken, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, taskPath(task.ID), a.Tokens.AccessToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Empty(s.list(b.Tokens.AccessToken, "").Tasks)
}

func (s *TaskHandlerTestSuite) TestCreateTask_Defaults() {
	a := s.register("a@example.com", "")

	task := s.createTask(a.Tokens.AccessToken, gin.H{"title": "  Padded  "})

	s.Equal("Padded", task.Title)
	s.Equal(models.TaskStatusTodo, task.Status)
	s.Equal(models.TaskPriorityMedium, task.Priority)
	s.Equal(a.User.ID, task.Creator.ID)
	s.Equal("Test User", task.Creator.Name)
	s.Nil(task.Assignee)
	s.NotNil(task.Tags)
	s.Empty(task.Tags)
}

func (s *TaskHandlerTestSuite) TestCreateTask_TitleLimitIgnoresPadding() {
	a := s.register("a@example.com", "")
	full := strings.Repeat("x", 255)

	task := s.createTask(a.Tokens.AccessToken, gin.H{"title": "   " + full + "   "})

	s.Equal(full, task.Title)
}

func (s *TaskHandlerTestSuite) TestCreateTask_TagOrderRoundTrip() {
	a := s.register("a@example.com", "")
	tags := []string{"zeta", "alpha", "mid", "beta"}

	created := s.createTask(a.Tokens.AccessToken, gin.H{"title": "Tagged", "tags": tags})
	s.Equal(tags, created.Tags)

	w := s.do(http.MethodGet, taskPath(created.ID), a.Tokens.AccessToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var fetched dto.TaskResponse
	s.decode(w, &fetched)
	s.Equal(tags, fetched.Tags)
}

func (s *TaskHandlerTestSuite) TestCreateTask_Validation() {
	a := s.register("a@example.com", "")

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing title", gin.H{"description": "x"}},
		{"blank title", gin.H{"title": "   "}},
		{"bad status", gin.H{"title": "t", "status": "done"}},
		{"bad priority", gin.H{"title": "t", "priority": "critical"}},
		{"bad due date", gin.H{"title": "t", "dueDate": "next tuesday"}},
		{"negative hours", gin.H{"title": "t", "estimatedHours": -1}},
		{"empty tag", gin.H{"title": "t", "tags": []string{"ok", ""}}},
		{"title too long", gin.H{"title": strings.Repeat("x", 256)}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/api/tasks", a.Tokens.AccessToken, tt.body)
			s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
			s.Equal(apierrors.ErrCodeValidation, s.errorCode(w))
		})
	}

	var count int64
	s.Require().NoError(s.db.Model(&models.Task{}).Count(&count).Error)
	s.Zero(count)
}

func (s *TaskHandlerTestSuite) TestCreateTask_InvalidAssigneeInsertsNothing() {
	manager := s.register("m@example.com", models.RoleManager)
	inactive := testutil.CreateUser(s.T(), s.db, "idle@example.com", models.RoleEmployee)
	testutil.SetStatus(s.T(), s.db, inactive, models.UserStatusInactive)

	for _, assignee := range []uint64{inactive.ID, 9999} {
		w := s.do(http.MethodPost, "/api/tasks", manager.Tokens.AccessToken, gin.H{
			"title":      "Nobody home",
			"assignedTo": assignee,
		})
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal(apierrors.ErrCodeInvalidAssignee, s.errorCode(w))
	}

	var count int64
	s.Require().NoError(s.db.Model(&models.Task{}).Count(&count).Error)
	s.Zero(count)
}

func (s *TaskHandlerTestSuite) TestCreateTask_EmployeeCannotAssignOthers() {
	a := s.register("a@example.com", "")
	c := s.register("c@example.com", "")

	w := s.do(http.MethodPost, "/api/tasks", a.Tokens.AccessToken, gin.H{
		"title":      "For someone else",
		"assignedTo": c.User.ID,
	})

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *TaskHandlerTestSuite) TestUpdateTask_NullClearsField() {
	a := s.register("a@example.com", "")
	task := s.createTask(a.Tokens.AccessToken, gin.H{
		"title":          "Dated",
		"dueDate":        "2030-01-02",
		"estimatedHours": 3,
	})
	s.Require().NotNil(task.DueDate)

	w := s.do(http.MethodPut, taskPath(task.ID), a.Tokens.AccessToken, gin.H{"dueDate": nil})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated dto.TaskResponse
	s.decode(w, &updated)
	s.Nil(updated.DueDate)
	s.Require().NotNil(updated.EstimatedHours)
	s.Equal(3.0, *updated.EstimatedHours)
}

func (s *TaskHandlerTestSuite) TestUpdateStatus() {
	a := s.register("a@example.com", "")
	task := s.createTask(a.Tokens.AccessToken, gin.H{"title": "Move me"})

	w := s.do(http.MethodPatch, taskPath(task.ID)+"/status", a.Tokens.AccessToken, gin.H{"status": "in_progress"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.TaskResponse
	s.decode(w, &updated)
	s.Equal(models.TaskStatusInProgress, updated.Status)

	w = s.do(http.MethodPatch, taskPath(task.ID)+"/status", a.Tokens.AccessToken, gin.H{"status": "finished"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TaskHandlerTestSuite) TestGetTask_BadAndMissingIDs() {
	a := s.register("a@example.com", "")

	w := s.do(http.MethodGet, "/api/tasks/abc", a.Tokens.AccessToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/tasks/424242", a.Tokens.AccessToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(apierrors.ErrCodeNotFound, s.errorCode(w))
}

func (s *TaskHandlerTestSuite) TestDeleteTask_AssigneeForbidden() {
	manager := s.register("m@example.com", models.RoleManager)
	a := s.register("a@example.com", "")
	task := s.createTask(manager.Tokens.AccessToken, gin.H{"title": "Theirs", "assignedTo": a.User.ID})

	w := s.do(http.MethodDelete, taskPath(task.ID), a.Tokens.AccessToken, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *TaskHandlerTestSuite) TestListTasks_Pagination() {
	a := s.register("a@example.com", "")
	for i := 0; i < 5; i++ {
		s.createTask(a.Tokens.AccessToken, gin.H{"title": fmt.Sprintf("task %d", i)})
	}

	page := s.list(a.Tokens.AccessToken, "?page=2&limit=2")
	s.Len(page.Tasks, 2)
	s.Equal(int64(5), page.Pagination.Total)
	s.Equal(3, page.Pagination.TotalPages)
	s.True(page.Pagination.HasNext)
	s.True(page.Pagination.HasPrev)

	beyond := s.list(a.Tokens.AccessToken, "?page=9&limit=2")
	s.NotNil(beyond.Tasks)
	s.Empty(beyond.Tasks)
	s.Equal(int64(5), beyond.Pagination.Total)
	s.False(beyond.Pagination.HasNext)

	clamped := s.list(a.Tokens.AccessToken, "?limit=1000")
	s.Equal(100, clamped.Pagination.Limit)
}

func (s *TaskHandlerTestSuite) TestListTasks_UnknownSortFallsBackToNewestFirst() {
	a := s.register("a@example.com", "")
	first := s.createTask(a.Tokens.AccessToken, gin.H{"title": "b-first"})
	second := s.createTask(a.Tokens.AccessToken, gin.H{"title": "a-second"})
	s.Require().NoError(s.db.Model(&models.Task{}).Where("id = ?", first.ID).
		Update("created_at", first.CreatedAt.Add(-time.Hour)).Error)

	res := s.list(a.Tokens.AccessToken, "?sortBy=password_hash")
	s.Require().Len(res.Tasks, 2)
	s.Equal(second.ID, res.Tasks[0].ID)
	s.Equal(first.ID, res.Tasks[1].ID)

	res = s.list(a.Tokens.AccessToken, "?sortBy=title&sortOrder=asc")
	s.Equal(second.ID, res.Tasks[0].ID)
}

func (s *TaskHandlerTestSuite) TestListTasks_Filters() {
	manager := s.register("m@example.com", models.RoleManager)
	a := s.register("a@example.com", "")
	s.createTask(manager.Tokens.AccessToken, gin.H{"title": "Fix login bug", "priority": "high", "assignedTo": a.User.ID})
	s.createTask(manager.Tokens.AccessToken, gin.H{"title": "Plan offsite", "priority": "low"})

	res := s.list(manager.Tokens.AccessToken, "?priority=high")
	s.Require().Len(res.Tasks, 1)
	s.Equal("Fix login bug", res.Tasks[0].Title)

	res = s.list(manager.Tokens.AccessToken, "?search=OFFSITE")
	s.Require().Len(res.Tasks, 1)
	s.Equal("Plan offsite", res.Tasks[0].Title)

	res = s.list(manager.Tokens.AccessToken, fmt.Sprintf("?assignedTo=%d", a.User.ID))
	s.Len(res.Tasks, 1)

	w := s.do(http.MethodGet, "/api/tasks?assignedTo=abc", manager.Tokens.AccessToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/tasks?status=nope", manager.Tokens.AccessToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TaskHandlerTestSuite) TestStats_AliasAndRestriction() {
	manager := s.register("m@example.com", models.RoleManager)
	a := s.register("a@example.com", "")
	s.createTask(manager.Tokens.AccessToken, gin.H{"title": "one"})
	s.createTask(a.Tokens.AccessToken, gin.H{"title": "two", "status": "completed"})

	for _, path := range []string{"/api/tasks/stats", "/api/tasks/stats/overview"} {
		w := s.do(http.MethodGet, path, manager.Tokens.AccessToken, nil)
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		var stats repository.TaskStats
		s.decode(w, &stats)
		s.Equal(int64(2), stats.Total)
	}

	w := s.do(http.MethodGet, "/api/tasks/stats", a.Tokens.AccessToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var stats repository.TaskStats
	s.decode(w, &stats)
	s.Equal(int64(1), stats.Total)
	s.Equal(int64(1), stats.ByStatus[models.TaskStatusCompleted])
}

func (s *TaskHandlerTestSuite) TestGenerateTasks_NotConfigured() {
	a := s.register("a@example.com", "")

	w := s.do(http.MethodPost, "/api/tasks/generate", a.Tokens.AccessToken, gin.H{"text": "Call the vendor tomorrow"})

	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal(apierrors.ErrCodeServiceUnavailable, s.errorCode(w))
}

func (s *TaskHandlerTestSuite) TestTasks_RequireAuth() {
	w := s.do(http.MethodGet, "/api/tasks", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}
