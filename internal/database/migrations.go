package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/workforce-api/internal/logger"
	"github.com/yukikurage/workforce-api/internal/models"
)

type compositeIndex struct {
	model   any
	table   string
	name    string
	columns string
}

// Composite indexes backing the task list filters; single-column indexes
// come from struct tags.
var compositeIndexes = []compositeIndex{
	{&models.Task{}, "tasks", "idx_tasks_status_priority", "status, priority"},
	{&models.Task{}, "tasks", "idx_tasks_assigned_status", "assigned_to, status"},
	{&models.Task{}, "tasks", "idx_tasks_creator_created", "created_by, created_at"},
	{&models.RefreshToken{}, "refresh_tokens", "idx_refresh_tokens_user_revoked", "user_id, revoked"},
	{&models.Notification{}, "notifications", "idx_notifications_user_read", "user_id, is_read"},
	{&models.Shift{}, "shifts", "idx_shifts_user_starts", "user_id, starts_at"},
}

// Migrate creates or updates every table, then adds composite indexes.
func Migrate(db *gorm.DB) error {
	log := logger.Get()
	log.Info().Msg("Running database migrations...")

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}

// AddIndexes creates any missing composite index.
func AddIndexes(db *gorm.DB) error {
	log := logger.Get()
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug().Str("index", idx.name).Msg("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Debug().Str("index", idx.name).Str("table", idx.table).Msg("Created index")
	}

	return nil
}
