package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/query"
)

const (
	taskViewColumns = `t.id, t.board_id, b.name AS board_name, t.title, t.description,
		t.status, t.priority, t.assigned_to, t.created_by, t.due_date,
		t.estimated_hours, t.actual_hours, t.tags, t.created_at, t.updated_at,
		c.first_name AS creator_first_name, c.last_name AS creator_last_name, c.email AS creator_email,
		a.first_name AS assignee_first_name, a.last_name AS assignee_last_name, a.email AS assignee_email`

	taskViewFrom = `tasks t
		JOIN users c ON c.id = t.created_by
		LEFT JOIN users a ON a.id = t.assigned_to
		LEFT JOIN boards b ON b.id = t.board_id AND b.deleted_at IS NULL`

	taskCountFrom = "tasks t"

	taskLive = "t.deleted_at IS NULL"
)

// TaskSortColumns is the allow-list of sortable task columns.
var TaskSortColumns = query.SortColumns{
	"createdAt":  "t.created_at",
	"created_at": "t.created_at",
	"updatedAt":  "t.updated_at",
	"updated_at": "t.updated_at",
	"dueDate":    "t.due_date",
	"due_date":   "t.due_date",
	"priority":   rankBy("t.priority", models.TaskPriorities),
	"status":     rankBy("t.status", models.TaskStatuses),
	"title":      "t.title",
}

const defaultTaskSort = "createdAt"

// rankBy orders an enum column by its declared order (priority by severity,
// status by workflow) instead of alphabetically. values are constants, never
// request input.
func rankBy[T ~string](col string, values []T) string {
	var sb strings.Builder
	sb.WriteString("CASE ")
	sb.WriteString(col)
	for i, v := range values {
		fmt.Fprintf(&sb, " WHEN '%s' THEN %d", v, i)
	}
	sb.WriteString(" END")
	return sb.String()
}

// GormTaskRepository is a GORM implementation of TaskRepository. Reads go
// through the query builder so the list and count share predicates.
type GormTaskRepository struct {
	gw *database.Gateway
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(gw *database.Gateway) TaskRepository {
	return &GormTaskRepository{gw: gw}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	return db.Omit(clause.Associations).Create(task).Error
}

// FindByID finds a live task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var task models.Task
	if err := db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindView loads the denormalized view of a live task
func (r *GormTaskRepository) FindView(ctx context.Context, id uint64) (*models.TaskView, error) {
	sql, args := query.New().
		Where(taskLive).
		Where("t.id = ?", id).
		Select(taskViewColumns, taskViewFrom)

	var views []models.TaskView
	if err := r.gw.Scan(ctx, &views, sql, args...); err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &views[0], nil
}

func (r *GormTaskRepository) filtered(filter TaskFilter) *query.Builder {
	b := query.New()
	// Row restriction goes first so no later predicate can widen it.
	if filter.RestrictTo != nil {
		b.Where("(t.created_by = ? OR t.assigned_to = ?)", *filter.RestrictTo, *filter.RestrictTo)
	}
	b.Where(taskLive)

	if filter.Status != nil {
		b.Where("t.status = ?", string(*filter.Status))
	}
	if filter.Priority != nil {
		b.Where("t.priority = ?", string(*filter.Priority))
	}
	if filter.AssignedTo != nil {
		b.Where("t.assigned_to = ?", *filter.AssignedTo)
	}
	if filter.CreatedBy != nil {
		b.Where("t.created_by = ?", *filter.CreatedBy)
	}
	if filter.BoardID != nil {
		b.Where("t.board_id = ?", *filter.BoardID)
	}
	return b.Search(filter.Search, "t.title", "t.description")
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.TaskView, int64, error) {
	b := r.filtered(filter)

	countSQL, countArgs := b.Count(taskCountFrom)
	var total int64
	if err := r.gw.Scan(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	sql, args := b.
		OrderBy(filter.SortBy, filter.SortOrder, TaskSortColumns, defaultTaskSort).
		Tiebreak("t.id").
		Paginate(filter.Page).
		Select(taskViewColumns, taskViewFrom)

	views := make([]models.TaskView, 0)
	if err := r.gw.Scan(ctx, &views, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return views, total, nil
}

// UpdateFields applies a partial update to a live task
func (r *GormTaskRepository) UpdateFields(ctx context.Context, id uint64, fields map[string]any) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	tx := db.Model(&models.Task{ID: id}).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	tx := db.Delete(&models.Task{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

const trendMonths = 6

// Stats aggregates counts by status and priority, the overdue count and
// the number of tasks created per month over the last six months.
func (r *GormTaskRepository) Stats(ctx context.Context, restrictTo *uint64, now time.Time) (*TaskStats, error) {
	base := func() *query.Builder {
		return r.filtered(TaskFilter{RestrictTo: restrictTo})
	}

	stats := &TaskStats{
		ByStatus:   make(map[models.TaskStatus]int64, len(models.TaskStatuses)),
		ByPriority: make(map[models.TaskPriority]int64, len(models.TaskPriorities)),
	}
	for _, s := range models.TaskStatuses {
		stats.ByStatus[s] = 0
	}
	for _, p := range models.TaskPriorities {
		stats.ByPriority[p] = 0
	}

	where, args := base().WhereClause()
	var byStatus []struct {
		Status string
		Total  int64
	}
	if err := r.gw.Scan(ctx, &byStatus, "SELECT t.status AS status, COUNT(*) AS total FROM tasks t"+where+" GROUP BY t.status", args...); err != nil {
		return nil, fmt.Errorf("task stats by status: %w", err)
	}
	for _, row := range byStatus {
		stats.ByStatus[models.TaskStatus(row.Status)] = row.Total
		stats.Total += row.Total
	}

	var byPriority []struct {
		Priority string
		Total    int64
	}
	if err := r.gw.Scan(ctx, &byPriority, "SELECT t.priority AS priority, COUNT(*) AS total FROM tasks t"+where+" GROUP BY t.priority", args...); err != nil {
		return nil, fmt.Errorf("task stats by priority: %w", err)
	}
	for _, row := range byPriority {
		stats.ByPriority[models.TaskPriority(row.Priority)] = row.Total
	}

	overdueSQL, overdueArgs := base().
		Where("t.due_date < ?", now.UTC()).
		Where("t.status NOT IN (?, ?)", string(models.TaskStatusCompleted), string(models.TaskStatusCancelled)).
		Count(taskCountFrom)
	if err := r.gw.Scan(ctx, &stats.Overdue, overdueSQL, overdueArgs...); err != nil {
		return nil, fmt.Errorf("task stats overdue: %w", err)
	}

	// Month bucketing is done here rather than in SQL so it works the same
	// on every dialect.
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(trendMonths - 1), 0)
	trendSQL, trendArgs := base().Where("t.created_at >= ?", start).Select("t.created_at", taskCountFrom)
	var created []struct{ CreatedAt time.Time }
	if err := r.gw.Scan(ctx, &created, trendSQL, trendArgs...); err != nil {
		return nil, fmt.Errorf("task stats trend: %w", err)
	}

	buckets := make(map[string]int64, trendMonths)
	for _, row := range created {
		buckets[row.CreatedAt.UTC().Format("2006-01")]++
	}
	stats.MonthlyTrend = make([]MonthlyCount, 0, trendMonths)
	for i := 0; i < trendMonths; i++ {
		month := start.AddDate(0, i, 0).Format("2006-01")
		stats.MonthlyTrend = append(stats.MonthlyTrend, MonthlyCount{Month: month, Count: buckets[month]})
	}

	return stats, nil
}
