package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/yukikurage/workforce-api/internal/auth"
	"github.com/yukikurage/workforce-api/internal/constants"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/logger"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/policy"
	"github.com/yukikurage/workforce-api/internal/query"
	"github.com/yukikurage/workforce-api/internal/repository"
)

var (
	ErrTaskNotFound           = apierrors.NewNotFoundError("Task not found")
	ErrInvalidAssignee        = apierrors.NewBadRequestError(apierrors.ErrCodeInvalidAssignee, "Assignee must be an active user")
	ErrInvalidBoard           = apierrors.NewBadRequestError(apierrors.ErrCodeInvalidBoard, "Board not found")
	ErrTitleEmpty             = apierrors.NewValidationError("", apierrors.FieldError{Field: "title", Message: "title is required"})
	ErrTitleTooLong           = apierrors.NewValidationError("", apierrors.FieldError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", constants.MaxTitleLength)})
	ErrAIServiceNotConfigured = &apierrors.AppError{Status: http.StatusServiceUnavailable, Code: apierrors.ErrCodeServiceUnavailable, Message: "Task generation is not configured"}
	ErrAINoTasksGenerated     = apierrors.NewBadRequestError(apierrors.ErrCodeInvalidInput, "No tasks could be extracted from the text")
	ErrAIUpstream             = &apierrors.AppError{Status: http.StatusBadGateway, Code: apierrors.ErrCodeServiceUnavailable, Message: "Task generation failed"}
)

// TaskService handles task business logic
type TaskService struct {
	store     *repository.Store
	aiService *AIService
	now       func() time.Time
}

// NewTaskService creates a new TaskService. aiService may be nil.
func NewTaskService(store *repository.Store, aiService *AIService) *TaskService {
	return &TaskService{
		store:     store,
		aiService: aiService,
		now:       time.Now,
	}
}

// Change is an optional update to a nullable column: Set reports whether
// the field was present, Value nil means clear it.
type Change[T any] struct {
	Set   bool
	Value *T
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	AssignedTo *uint64
	CreatedBy  *uint64
	BoardID    *uint64
	Search     string
	SortBy     string
	SortOrder  query.Direction
	Page       query.Page
}

// TaskPage is one page of task views.
type TaskPage struct {
	Tasks      []models.TaskView
	Pagination query.Meta
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title          string
	Description    string
	Status         models.TaskStatus
	Priority       models.TaskPriority
	BoardID        *uint64
	AssignedTo     *uint64
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Tags           []string
}

// UpdateTaskInput represents a partial update. Nil pointers and unset
// changes leave the column alone.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	Tags           *[]string
	BoardID        Change[uint64]
	AssignedTo     Change[uint64]
	DueDate        Change[time.Time]
	EstimatedHours Change[float64]
	ActualHours    Change[float64]
}

// ListTasks returns the page of tasks visible to actor.
func (s *TaskService) ListTasks(ctx context.Context, actor auth.Identity, input ListTasksInput) (*TaskPage, error) {
	filter := repository.TaskFilter{
		RestrictTo: policy.RowFilter(actor.UserID, actor.Role),
		Status:     input.Status,
		Priority:   input.Priority,
		AssignedTo: input.AssignedTo,
		CreatedBy:  input.CreatedBy,
		BoardID:    input.BoardID,
		Search:     input.Search,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
		Page:       input.Page,
	}

	views, total, err := s.store.Tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &TaskPage{Tasks: views, Pagination: query.NewMeta(input.Page, total)}, nil
}

// GetTask returns the view of a task the actor may access.
func (s *TaskService) GetTask(ctx context.Context, actor auth.Identity, taskID uint64) (*models.TaskView, error) {
	if _, err := s.loadAccessible(ctx, actor, taskID); err != nil {
		return nil, err
	}
	return s.view(ctx, taskID)
}

// CreateTask validates references and inserts a task owned by actor.
func (s *TaskService) CreateTask(ctx context.Context, actor auth.Identity, input CreateTaskInput) (*models.TaskView, error) {
	title, err := cleanTitle(input.Title)
	if err != nil {
		return nil, err
	}

	if d := policy.CanReassign(actor.UserID, actor.Role, nil, input.AssignedTo); !d.Allowed {
		return nil, apierrors.NewForbiddenError(d.Reason)
	}
	if err := s.ensureAssignable(ctx, input.AssignedTo); err != nil {
		return nil, err
	}
	if err := s.ensureBoard(ctx, input.BoardID); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		BoardID:        input.BoardID,
		Title:          title,
		Description:    input.Description,
		Status:         status,
		Priority:       priority,
		AssignedTo:     input.AssignedTo,
		CreatedBy:      actor.UserID,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		ActualHours:    input.ActualHours,
		Tags:           normalizeTags(input.Tags),
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tasks.Create(ctx, task); err != nil {
			return err
		}
		return s.notifyAssignment(ctx, tx, actor, task.ID, title, nil, task.AssignedTo)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logger.Get().Info().Uint64("task_id", task.ID).Uint64("user_id", actor.UserID).Msg("task created")
	return s.view(ctx, task.ID)
}

// UpdateTask applies a partial update after the access and reassignment
// checks.
func (s *TaskService) UpdateTask(ctx context.Context, actor auth.Identity, taskID uint64, input UpdateTaskInput) (*models.TaskView, error) {
	task, err := s.loadAccessible(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}

	if input.Title != nil {
		title, err := cleanTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.Priority != nil {
		fields["priority"] = *input.Priority
	}
	if input.Tags != nil {
		fields["tags"] = normalizeTags(*input.Tags)
	}

	reassigned := false
	if input.AssignedTo.Set {
		next := input.AssignedTo.Value
		if d := policy.CanReassign(actor.UserID, actor.Role, task.AssignedTo, next); !d.Allowed {
			return nil, apierrors.NewForbiddenError(d.Reason)
		}
		if !sameID(task.AssignedTo, next) {
			if err := s.ensureAssignable(ctx, next); err != nil {
				return nil, err
			}
			fields["assigned_to"] = next
			reassigned = true
		}
	}
	if input.BoardID.Set {
		if err := s.ensureBoard(ctx, input.BoardID.Value); err != nil {
			return nil, err
		}
		fields["board_id"] = input.BoardID.Value
	}
	if input.DueDate.Set {
		fields["due_date"] = input.DueDate.Value
	}
	if input.EstimatedHours.Set {
		fields["estimated_hours"] = input.EstimatedHours.Value
	}
	if input.ActualHours.Set {
		fields["actual_hours"] = input.ActualHours.Value
	}

	if len(fields) == 0 {
		return s.view(ctx, taskID)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tasks.UpdateFields(ctx, taskID, fields); err != nil {
			return err
		}
		if reassigned {
			title := task.Title
			if t, ok := fields["title"].(string); ok {
				title = t
			}
			return s.notifyAssignment(ctx, tx, actor, taskID, title, task.AssignedTo, input.AssignedTo.Value)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.view(ctx, taskID)
}

// cleanTitle trims title; the length limit applies to the trimmed text.
func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return "", ErrTitleEmpty
	case utf8.RuneCountInString(title) > constants.MaxTitleLength:
		return "", ErrTitleTooLong
	}
	return title, nil
}

// UpdateStatus changes only the status and tells the other parties.
func (s *TaskService) UpdateStatus(ctx context.Context, actor auth.Identity, taskID uint64, status models.TaskStatus) (*models.TaskView, error) {
	task, err := s.loadAccessible(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == status {
		return s.view(ctx, taskID)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tasks.UpdateFields(ctx, taskID, map[string]any{"status": status}); err != nil {
			return err
		}

		recipients := []uint64{task.CreatedBy}
		if task.AssignedTo != nil && *task.AssignedTo != task.CreatedBy {
			recipients = append(recipients, *task.AssignedTo)
		}
		for _, userID := range recipients {
			if userID == actor.UserID {
				continue
			}
			if err := tx.Notifications.Create(ctx, &models.Notification{
				UserID:      userID,
				Type:        models.NotificationTaskStatus,
				Title:       "Task status changed",
				Message:     fmt.Sprintf("%q moved from %s to %s", task.Title, task.Status, status),
				RelatedType: "task",
				RelatedID:   &task.ID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return s.view(ctx, taskID)
}

// DeleteTask soft deletes a task. Only the creator or a privileged role may
// delete.
func (s *TaskService) DeleteTask(ctx context.Context, actor auth.Identity, taskID uint64) error {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return err
	}
	if d := policy.CanDelete(actor.UserID, actor.Role, task.CreatedBy); !d.Allowed {
		return apierrors.NewForbiddenError(d.Reason)
	}

	if err := s.store.Tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	logger.Get().Info().Uint64("task_id", taskID).Uint64("user_id", actor.UserID).Msg("task deleted")
	return nil
}

// Stats aggregates over the tasks visible to actor.
func (s *TaskService) Stats(ctx context.Context, actor auth.Identity) (*repository.TaskStats, error) {
	stats, err := s.store.Tasks.Stats(ctx, policy.RowFilter(actor.UserID, actor.Role), s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute task stats: %w", err)
	}
	return stats, nil
}

// GenerateTasks uses AI to draft tasks from text
func (s *TaskService) GenerateTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, ErrAIUpstream.Wrap(err)
	}

	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := s.now().Add(-24 * time.Hour)
	for _, t := range aiTasks {
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			continue
		}
		if len([]rune(t.Title)) > constants.MaxTitleLength {
			t.Title = string([]rune(t.Title)[:constants.MaxTitleLength])
		}
		if !models.TaskPriority(t.Priority).Valid() {
			t.Priority = string(models.TaskPriorityMedium)
		}
		if t.DueDate != nil && t.DueDate.Before(cutoff) {
			t.DueDate = nil
		}
		t.Tags = normalizeTags(t.Tags)
		validTasks = append(validTasks, t)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	return validTasks, nil
}

func (s *TaskService) load(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.store.Tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// loadAccessible returns 404 for a missing row before deciding 403.
func (s *TaskService) loadAccessible(ctx context.Context, actor auth.Identity, taskID uint64) (*models.Task, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanAccess(actor.UserID, actor.Role, task.CreatedBy, task.AssignedTo); !d.Allowed {
		return nil, apierrors.NewForbiddenError(d.Reason)
	}
	return task, nil
}

func (s *TaskService) view(ctx context.Context, taskID uint64) (*models.TaskView, error) {
	v, err := s.store.Tasks.FindView(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return v, nil
}

func (s *TaskService) ensureAssignable(ctx context.Context, userID *uint64) error {
	if userID == nil {
		return nil
	}
	user, err := s.store.Users.FindByID(ctx, *userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidAssignee
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	if !user.IsActive() {
		return ErrInvalidAssignee
	}
	return nil
}

func (s *TaskService) ensureBoard(ctx context.Context, boardID *uint64) error {
	if boardID == nil {
		return nil
	}
	if _, err := s.store.Boards.FindByID(ctx, *boardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidBoard
		}
		return fmt.Errorf("failed to find board: %w", err)
	}
	return nil
}

// notifyAssignment records a task_assigned notification for a new assignee
// other than the actor.
func (s *TaskService) notifyAssignment(ctx context.Context, tx *repository.Store, actor auth.Identity, taskID uint64, title string, previous, next *uint64) error {
	if next == nil || *next == actor.UserID || sameID(previous, next) {
		return nil
	}
	id := taskID
	return tx.Notifications.Create(ctx, &models.Notification{
		UserID:      *next,
		Type:        models.NotificationTaskAssigned,
		Title:       "New task assigned",
		Message:     fmt.Sprintf("%s assigned you %q", actor.Name, title),
		RelatedType: "task",
		RelatedID:   &id,
	})
}

// normalizeTags trims entries and drops empty ones, keeping order.
func normalizeTags(tags []string) models.Tags {
	out := make(models.Tags, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func sameID(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
