package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusReview,
	TaskStatusCompleted,
	TaskStatusCancelled,
}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Open reports whether the task still counts towards overdue totals.
func (s TaskStatus) Open() bool {
	return s != TaskStatusCompleted && s != TaskStatusCancelled
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

var TaskPriorities = []TaskPriority{
	TaskPriorityLow,
	TaskPriorityMedium,
	TaskPriorityHigh,
	TaskPriorityUrgent,
}

func (p TaskPriority) Valid() bool {
	for _, v := range TaskPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// Tags is an ordered list of labels persisted as a JSON array.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("tags: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*t = out
	return nil
}

// GormDataType keeps the column a plain text type on every dialect.
func (Tags) GormDataType() string {
	return "text"
}

type Task struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	BoardID        *uint64        `gorm:"index" json:"boardId"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Status         TaskStatus     `gorm:"type:varchar(20);not null;default:'todo';index" json:"status"`
	Priority       TaskPriority   `gorm:"type:varchar(20);not null;default:'medium';index" json:"priority"`
	AssignedTo     *uint64        `gorm:"index" json:"assignedTo"`
	CreatedBy      uint64         `gorm:"not null;index" json:"createdBy"`
	DueDate        *time.Time     `gorm:"index" json:"dueDate"`
	EstimatedHours *float64       `json:"estimatedHours"`
	ActualHours    *float64       `json:"actualHours"`
	Tags           Tags           `json:"tags"`
	CreatedAt      time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator  User   `gorm:"foreignKey:CreatedBy" json:"-"`
	Assignee *User  `gorm:"foreignKey:AssignedTo" json:"-"`
	Board    *Board `gorm:"foreignKey:BoardID" json:"-"`
}

// TaskView is the denormalized read shape: the task row plus inlined
// creator, assignee and board fields.
type TaskView struct {
	ID                uint64
	BoardID           *uint64
	BoardName         *string
	Title             string
	Description       string
	Status            TaskStatus
	Priority          TaskPriority
	AssignedTo        *uint64
	CreatedBy         uint64
	DueDate           *time.Time
	EstimatedHours    *float64
	ActualHours       *float64
	Tags              Tags
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CreatorFirstName  string
	CreatorLastName   string
	CreatorEmail      string
	AssigneeFirstName *string
	AssigneeLastName  *string
	AssigneeEmail     *string
}
