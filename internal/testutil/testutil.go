// Package testutil provides in-memory databases and fixtures for tests.
package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/workforce-api/internal/config"
	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/models"
)

// NewDB opens a migrated in-memory SQLite database closed at test end.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file::memory:?_foreign_keys=on",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// NewGateway wraps NewDB in a gateway.
func NewGateway(t testing.TB) *database.Gateway {
	t.Helper()
	return database.NewGateway(NewDB(t), 5*time.Second)
}

// CreateUser inserts an active user with a placeholder hash.
func CreateUser(t testing.TB, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	user := &models.User{
		Email:        email,
		PasswordHash: "not-a-hash",
		FirstName:    local,
		LastName:     "Tester",
		Role:         role,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// SetStatus changes a user's account status.
func SetStatus(t testing.TB, db *gorm.DB, user *models.User, status models.UserStatus) {
	t.Helper()
	require.NoError(t, db.Model(user).Update("status", status).Error)
	user.Status = status
}

// CreateTask inserts a task owned by creator.
func CreateTask(t testing.TB, db *gorm.DB, title string, creator uint64, assignee *uint64) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:      title,
		CreatedBy:  creator,
		AssignedTo: assignee,
		Status:     models.TaskStatusTodo,
		Priority:   models.TaskPriorityMedium,
		Tags:       models.Tags{},
	}
	require.NoError(t, db.Omit("Creator", "Assignee", "Board").Create(task).Error)
	return task
}

func Ptr[T any](v T) *T {
	return &v
}
