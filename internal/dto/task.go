package dto

import (
	"time"

	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/query"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/validation"
)

// UserSummary is the inlined {id, name, email} of a related user
type UserSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Title          string              `json:"title" binding:"required,notblank"`
	Description    string              `json:"description" binding:"max=10000"`
	Status         models.TaskStatus   `json:"status" binding:"omitempty,taskstatus"`
	Priority       models.TaskPriority `json:"priority" binding:"omitempty,taskpriority"`
	BoardID        *uint64             `json:"boardId" binding:"omitempty,gt=0"`
	AssignedTo     *uint64             `json:"assignedTo" binding:"omitempty,gt=0"`
	DueDate        *string             `json:"dueDate" binding:"omitempty,isodate"`
	EstimatedHours *float64            `json:"estimatedHours" binding:"omitempty,gte=0"`
	ActualHours    *float64            `json:"actualHours" binding:"omitempty,gte=0"`
	Tags           []string            `json:"tags" binding:"omitempty,max=20,dive,notblank,max=50"`
}

// ToInput converts the request to service input.
func (r CreateTaskRequest) ToInput() services.CreateTaskInput {
	in := services.CreateTaskInput{
		Title:          r.Title,
		Description:    r.Description,
		Status:         r.Status,
		Priority:       r.Priority,
		BoardID:        r.BoardID,
		AssignedTo:     r.AssignedTo,
		EstimatedHours: r.EstimatedHours,
		ActualHours:    r.ActualHours,
		Tags:           r.Tags,
	}
	if r.DueDate != nil {
		// Already checked by the isodate rule.
		if due, err := validation.ParseDate(*r.DueDate); err == nil {
			in.DueDate = &due
		}
	}
	return in
}

// UpdateTaskRequest is the body of PUT /api/tasks/:id. Absent fields are
// left alone; nullable fields may be cleared with an explicit null.
type UpdateTaskRequest struct {
	Title          *string              `json:"title" binding:"omitempty,notblank"`
	Description    *string              `json:"description" binding:"omitempty,max=10000"`
	Status         *models.TaskStatus   `json:"status" binding:"omitempty,taskstatus"`
	Priority       *models.TaskPriority `json:"priority" binding:"omitempty,taskpriority"`
	Tags           *[]string            `json:"tags" binding:"omitempty,max=20,dive,notblank,max=50"`
	BoardID        Nullable[uint64]     `json:"boardId"`
	AssignedTo     Nullable[uint64]     `json:"assignedTo"`
	DueDate        Nullable[string]     `json:"dueDate"`
	EstimatedHours Nullable[float64]    `json:"estimatedHours"`
	ActualHours    Nullable[float64]    `json:"actualHours"`
}

// ToInput checks the nullable fields, which the binding rules cannot reach,
// and converts the request to service input.
func (r UpdateTaskRequest) ToInput() (services.UpdateTaskInput, error) {
	var fields []apierrors.FieldError

	in := services.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Tags:        r.Tags,
		BoardID:     services.Change[uint64]{Set: r.BoardID.Set, Value: r.BoardID.Value},
		AssignedTo:  services.Change[uint64]{Set: r.AssignedTo.Set, Value: r.AssignedTo.Value},
	}

	if v := r.BoardID.Value; v != nil && *v == 0 {
		fields = append(fields, apierrors.FieldError{Field: "boardId", Message: "boardId must be greater than 0"})
	}
	if v := r.AssignedTo.Value; v != nil && *v == 0 {
		fields = append(fields, apierrors.FieldError{Field: "assignedTo", Message: "assignedTo must be greater than 0"})
	}

	if r.DueDate.Set {
		in.DueDate.Set = true
		if r.DueDate.Value != nil {
			due, err := validation.ParseDate(*r.DueDate.Value)
			if err != nil {
				fields = append(fields, apierrors.FieldError{Field: "dueDate", Message: "dueDate must be an ISO-8601 date"})
			} else {
				in.DueDate.Value = &due
			}
		}
	}

	for _, h := range []struct {
		name string
		src  Nullable[float64]
		dst  *services.Change[float64]
	}{
		{"estimatedHours", r.EstimatedHours, &in.EstimatedHours},
		{"actualHours", r.ActualHours, &in.ActualHours},
	} {
		if !h.src.Set {
			continue
		}
		if h.src.Value != nil && *h.src.Value < 0 {
			fields = append(fields, apierrors.FieldError{Field: h.name, Message: h.name + " must be greater than or equal to 0"})
			continue
		}
		*h.dst = services.Change[float64]{Set: true, Value: h.src.Value}
	}

	if len(fields) > 0 {
		return services.UpdateTaskInput{}, apierrors.NewValidationError("", fields...)
	}
	return in, nil
}

// UpdateStatusRequest is the body of PATCH /api/tasks/:id/status
type UpdateStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required,taskstatus"`
}

// GenerateTasksRequest is the body of POST /api/tasks/generate
type GenerateTasksRequest struct {
	Text string `json:"text" binding:"required,notblank,max=8000"`
}

// ListTasksQuery binds the task list query string
type ListTasksQuery struct {
	Status    *models.TaskStatus   `form:"status" binding:"omitempty,taskstatus"`
	Priority  *models.TaskPriority `form:"priority" binding:"omitempty,taskpriority"`
	Search    string               `form:"search" binding:"max=200"`
	SortBy    string               `form:"sortBy"`
	SortOrder string               `form:"sortOrder"`
}

// TaskResponse is the denormalized task view returned by every task route
type TaskResponse struct {
	ID             uint64              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Status         models.TaskStatus   `json:"status"`
	Priority       models.TaskPriority `json:"priority"`
	BoardID        *uint64             `json:"boardId"`
	BoardName      *string             `json:"boardName"`
	AssignedTo     *uint64             `json:"assignedTo"`
	Assignee       *UserSummary        `json:"assignee"`
	CreatedBy      uint64              `json:"createdBy"`
	Creator        UserSummary         `json:"creator"`
	DueDate        *time.Time          `json:"dueDate"`
	EstimatedHours *float64            `json:"estimatedHours"`
	ActualHours    *float64            `json:"actualHours"`
	Tags           []string            `json:"tags"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	Pagination query.Meta     `json:"pagination"`
}

// ToTaskResponse converts a task view to its response shape
func ToTaskResponse(v models.TaskView) TaskResponse {
	resp := TaskResponse{
		ID:             v.ID,
		Title:          v.Title,
		Description:    v.Description,
		Status:         v.Status,
		Priority:       v.Priority,
		BoardID:        v.BoardID,
		BoardName:      v.BoardName,
		AssignedTo:     v.AssignedTo,
		CreatedBy:      v.CreatedBy,
		DueDate:        v.DueDate,
		EstimatedHours: v.EstimatedHours,
		ActualHours:    v.ActualHours,
		Tags:           []string(v.Tags),
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
		Creator: UserSummary{
			ID:    v.CreatedBy,
			Name:  joinName(v.CreatorFirstName, v.CreatorLastName),
			Email: v.CreatorEmail,
		},
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}

	// Include assignee if the join found one
	if v.AssignedTo != nil && v.AssigneeEmail != nil {
		resp.Assignee = &UserSummary{
			ID:    *v.AssignedTo,
			Name:  joinName(deref(v.AssigneeFirstName), deref(v.AssigneeLastName)),
			Email: *v.AssigneeEmail,
		}
	}
	return resp
}

// ToTaskListResponse converts a page of views
func ToTaskListResponse(page *services.TaskPage) TaskListResponse {
	items := make([]TaskResponse, len(page.Tasks))
	for i, v := range page.Tasks {
		items[i] = ToTaskResponse(v)
	}
	return TaskListResponse{Tasks: items, Pagination: page.Pagination}
}

// GeneratedTasksResponse wraps task drafts
type GeneratedTasksResponse struct {
	Tasks []services.GeneratedTask `json:"tasks"`
}

func joinName(first, last string) string {
	return models.User{FirstName: first, LastName: last}.Name()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
