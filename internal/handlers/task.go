package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/metrics"
	"github.com/yukikurage/workforce-api/internal/middleware"
	"github.com/yukikurage/workforce-api/internal/query"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the page of tasks visible to the current user.
// Supports status, priority, assignedTo, createdBy, boardId, search,
// sortBy, sortOrder, page and limit.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var q dto.ListTasksQuery
	if !bindQuery(c, &q) {
		return
	}

	input := services.ListTasksInput{
		Status:    q.Status,
		Priority:  q.Priority,
		Search:    q.Search,
		SortBy:    q.SortBy,
		SortOrder: query.ParseDirection(q.SortOrder),
		Page:      utils.GetPagination(c),
	}
	for _, f := range []struct {
		name string
		dst  **uint64
	}{
		{"assignedTo", &input.AssignedTo},
		{"createdBy", &input.CreatedBy},
		{"boardId", &input.BoardID},
	} {
		id, valid := utils.ParseOptionalID(c, f.name)
		if !valid {
			apierrors.Abort(c, apierrors.NewValidationError("", apierrors.FieldError{
				Field:   f.name,
				Message: f.name + " must be a positive integer",
			}))
			return
		}
		*f.dst = id
	}

	page, err := h.taskService.ListTasks(c.Request.Context(), caller, input)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(page))
}

// GetTask returns the task loaded by RequireTaskAccess.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.Abort(c, services.ErrTaskNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponse(*task))
}

// CreateTask creates a new task owned by the current user.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), caller, req.ToInput())
	if err != nil {
		apierrors.Abort(c, err)
		return
	}
	metrics.TasksCreatedTotal.WithLabelValues(string(task.Priority)).Inc()

	c.JSON(http.StatusCreated, dto.ToTaskResponse(*task))
}

// UpdateTask applies a partial update.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.Abort(c, services.ErrTaskNotFound)
		return
	}

	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.ToInput()
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), caller, task.ID, input)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponse(*updated))
}

// UpdateStatus changes only the task status.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.Abort(c, services.ErrTaskNotFound)
		return
	}

	var req dto.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.taskService.UpdateStatus(c.Request.Context(), caller, task.ID, req.Status)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponse(*updated))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.Abort(c, services.ErrTaskNotFound)
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), caller, task.ID); err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// Stats returns aggregate counts over the tasks the caller can see.
func (h *TaskHandler) Stats(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	stats, err := h.taskService.Stats(c.Request.Context(), caller)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GenerateTasks drafts tasks from free text. Nothing is persisted.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	var req dto.GenerateTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	start := time.Now()
	tasks, err := h.taskService.GenerateTasks(c.Request.Context(), req.Text)
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.TaskGenerationDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GeneratedTasksResponse{Tasks: tasks})
}
