package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yukikurage/workforce-api/internal/config"
	"github.com/yukikurage/workforce-api/internal/models"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file::memory:?_foreign_keys=on",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func openMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestMigrate_CreatesSchema(t *testing.T) {
	db := openSQLite(t)

	require.NoError(t, Migrate(db))
	// Second run is a no-op.
	require.NoError(t, Migrate(db))

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Task{}, "idx_tasks_status_priority"))
	assert.NoError(t, Ping(context.Background(), db))
}

func TestGateway_QueryReturnsRows(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Migrate(db))
	gw := NewGateway(db, time.Second)
	ctx := context.Background()

	_, err := gw.Exec(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name, role, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		"a@example.com", "x", "Ann", "Lee", "employee", "active", time.Now(), time.Now())
	require.NoError(t, err)

	res, err := gw.Query(ctx, "SELECT email FROM users WHERE email = ?", "a@example.com")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.EqualValues(t, "a@example.com", res.Rows[0]["email"])

	res, err = gw.Query(ctx, "SELECT email FROM users WHERE email = ?", "'; DROP TABLE users; --")
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.True(t, db.Migrator().HasTable(&models.User{}))
}

func TestGateway_QueryNormalizesAggregates(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Migrate(db))
	gw := NewGateway(db, time.Second)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := gw.Exec(ctx,
			"INSERT INTO users (email, password_hash, first_name, last_name, role, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			email, "x", "Ann", "Lee", "employee", "active", time.Now(), time.Now())
		require.NoError(t, err)
	}

	res, err := gw.Query(ctx, "SELECT role, COUNT(*) AS total FROM users GROUP BY role")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "employee", res.Rows[0]["role"])
	assert.Equal(t, int64(2), res.Rows[0]["total"])

	var counts []struct {
		Role  string
		Total int64
	}
	require.NoError(t, gw.Scan(ctx, &counts, "SELECT role, COUNT(*) AS total FROM users GROUP BY role"))
	require.Len(t, counts, 1)
	assert.Equal(t, int64(2), counts[0].Total)
}

func TestNormalize(t *testing.T) {
	var boxed any = int64(7)
	var nilBox *any

	assert.Equal(t, int64(7), normalize(&boxed))
	assert.Nil(t, normalize(nilBox))
	assert.Equal(t, "42", normalize([]byte("42")))
	assert.Equal(t, int64(3), normalize(3))
	assert.Equal(t, 1.5, normalize(1.5))
}

func TestGateway_ConnAppliesTimeout(t *testing.T) {
	db := openSQLite(t)

	conn, cancel := NewGateway(db, time.Second).Conn(context.Background())
	deadline, ok := conn.Statement.Context.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)

	cancel()
	assert.ErrorIs(t, conn.Statement.Context.Err(), context.Canceled)

	unbounded, cancel := NewGateway(db, 0).Conn(context.Background())
	defer cancel()
	_, ok = unbounded.Statement.Context.Deadline()
	assert.False(t, ok)
}

func TestGateway_TransactionCommits(t *testing.T) {
	db, mock := openMock(t)
	gw := NewGateway(db, time.Second)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET status = ? WHERE id = ?")).
		WithArgs("completed", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := gw.Transaction(context.Background(), func(tx *Gateway) error {
		res, err := tx.Exec(context.Background(), "UPDATE tasks SET status = ? WHERE id = ?", "completed", 1)
		if err != nil {
			return err
		}
		assert.EqualValues(t, 1, res.RowsAffected)
		return nil
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_TransactionRollsBackOnError(t *testing.T) {
	db, mock := openMock(t)
	gw := NewGateway(db, time.Second)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = ?")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := gw.Transaction(context.Background(), func(tx *Gateway) error {
		if _, err := tx.Exec(context.Background(), "DELETE FROM tasks WHERE id = ?", 1); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_ExecPropagatesDriverError(t *testing.T) {
	db, mock := openMock(t)
	gw := NewGateway(db, time.Second)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks")).
		WillReturnError(errors.New("connection reset"))

	_, err := gw.Exec(context.Background(), "DELETE FROM tasks")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
