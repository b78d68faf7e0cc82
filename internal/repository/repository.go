package repository

import (
	"context"
	"time"

	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/query"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by the exact stored email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateFields applies a partial update
	UpdateFields(ctx context.Context, id uint64, fields map[string]any) error

	// TouchLastLogin stamps the last login time
	TouchLastLogin(ctx context.Context, id uint64, at time.Time) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a task; ID is populated on success
	Create(ctx context.Context, task *models.Task) error

	// FindByID loads a live (not soft-deleted) task
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// FindView loads the denormalized view of a live task
	FindView(ctx context.Context, id uint64) (*models.TaskView, error)

	// List returns one page of views plus the total match count
	List(ctx context.Context, filter TaskFilter) ([]models.TaskView, int64, error)

	// UpdateFields applies a partial update to a live task
	UpdateFields(ctx context.Context, id uint64, fields map[string]any) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id uint64) error

	// Stats aggregates counts visible to restrictTo (nil = all)
	Stats(ctx context.Context, restrictTo *uint64, now time.Time) (*TaskStats, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	// RestrictTo limits rows to tasks created by or assigned to this user.
	RestrictTo *uint64
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

// TaskStats is the aggregate overview of visible tasks.
type TaskStats struct {
	Total        int64                         `json:"total"`
	ByStatus     map[models.TaskStatus]int64   `json:"byStatus"`
	ByPriority   map[models.TaskPriority]int64 `json:"byPriority"`
	Overdue      int64                         `json:"overdue"`
	MonthlyTrend []MonthlyCount                `json:"monthlyTrend"`
}

// MonthlyCount is the number of tasks created in one calendar month.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	FindByID(ctx context.Context, id uint64) (*models.Team, error)
	FindByInviteCode(ctx context.Context, code string) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error

	// Delete removes the team, its boards and its memberships
	Delete(ctx context.Context, id uint64) error

	List(ctx context.Context) ([]models.Team, error)
	AddMember(ctx context.Context, member *models.TeamMember) error
	RemoveMember(ctx context.Context, teamID, userID uint64) error
	FindMember(ctx context.Context, teamID, userID uint64) (*models.TeamMember, error)

	// ListMembershipsByUserID lists a user's memberships with teams preloaded
	ListMembershipsByUserID(ctx context.Context, userID uint64) ([]models.TeamMember, error)

	// ListMembers lists a team's members with users preloaded
	ListMembers(ctx context.Context, teamID uint64) ([]models.TeamMember, error)
}

// BoardRepository defines the interface for board data access
type BoardRepository interface {
	Create(ctx context.Context, board *models.Board) error
	FindByID(ctx context.Context, id uint64) (*models.Board, error)
	ListByTeam(ctx context.Context, teamID uint64) ([]models.Board, error)
}

// RefreshTokenRepository tracks issued refresh tokens by jti
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByJTI(ctx context.Context, jti string) (*models.RefreshToken, error)

	// Rotate revokes oldJTI, marks it replaced by next.JTI and persists next.
	// It reports false when oldJTI was no longer active.
	Rotate(ctx context.Context, oldJTI string, next *models.RefreshToken, at time.Time) (bool, error)

	Revoke(ctx context.Context, jti string, at time.Time) error
	RevokeAllForUser(ctx context.Context, userID uint64, at time.Time) (int64, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID uint64, unreadOnly bool, page query.Page) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint64) (int64, error)

	// MarkRead reports false when no notification with id belongs to userID
	MarkRead(ctx context.Context, userID, id uint64) (bool, error)

	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
}

// MessageRepository defines the interface for team channel messages
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByTeam(ctx context.Context, teamID uint64, page query.Page) ([]models.Message, int64, error)
}

// ShiftFilter selects shifts overlapping [From, To). Nil bounds are open.
type ShiftFilter struct {
	TeamID *uint64
	UserID *uint64
	From   *time.Time
	To     *time.Time
	Page   query.Page
}

// ShiftRepository defines the interface for shift data access
type ShiftRepository interface {
	Create(ctx context.Context, shift *models.Shift) error

	// FindByID loads a live shift
	FindByID(ctx context.Context, id uint64) (*models.Shift, error)

	// List returns matching shifts ordered by start time, users preloaded
	List(ctx context.Context, filter ShiftFilter) ([]models.Shift, int64, error)

	// HasOverlap reports whether userID already has a live shift
	// intersecting [start, end)
	HasOverlap(ctx context.Context, userID uint64, start, end time.Time) (bool, error)

	Delete(ctx context.Context, id uint64) error
}

// Store bundles every repository over one gateway. A Store obtained from
// Transaction shares the transaction across all of its repositories.
type Store struct {
	gw *database.Gateway

	Users         UserRepository
	Tasks         TaskRepository
	Teams         TeamRepository
	Boards        BoardRepository
	RefreshTokens RefreshTokenRepository
	Notifications NotificationRepository
	Messages      MessageRepository
	Shifts        ShiftRepository
}

func NewStore(gw *database.Gateway) *Store {
	return &Store{
		gw:            gw,
		Users:         NewUserRepository(gw),
		Tasks:         NewTaskRepository(gw),
		Teams:         NewTeamRepository(gw),
		Boards:        NewBoardRepository(gw),
		RefreshTokens: NewRefreshTokenRepository(gw),
		Notifications: NewNotificationRepository(gw),
		Messages:      NewMessageRepository(gw),
		Shifts:        NewShiftRepository(gw),
	}
}

func (s *Store) Gateway() *database.Gateway {
	return s.gw
}

// Transaction runs fn against a Store bound to a single transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.gw.Transaction(ctx, func(tx *database.Gateway) error {
		return fn(NewStore(tx))
	})
}
