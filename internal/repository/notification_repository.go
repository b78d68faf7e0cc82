package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/query"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	gw *database.Gateway
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(gw *database.Gateway) NotificationRepository {
	return &GormNotificationRepository{gw: gw}
}

func (r *GormNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	return db.Omit(clause.Associations).Create(n).Error
}

func scopeNotifications(db *gorm.DB, userID uint64, unreadOnly bool) *gorm.DB {
	db = db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}
	return db
}

// List returns newest first
func (r *GormNotificationRepository) List(ctx context.Context, userID uint64, unreadOnly bool, page query.Page) ([]models.Notification, int64, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var total int64
	if err := scopeNotifications(db, userID, unreadOnly).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.Notification, 0)
	if err := scopeNotifications(db, userID, unreadOnly).
		Order("created_at DESC").Order("id DESC").
		Scopes(database.Paginate(page)).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var total int64
	err := scopeNotifications(db, userID, true).Count(&total).Error
	return total, err
}

func (r *GormNotificationRepository) MarkRead(ctx context.Context, userID, id uint64) (bool, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var n models.Notification
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if n.Read {
		return true, nil
	}
	err := db.Model(&n).UpdateColumn("is_read", true).Error
	return err == nil, err
}

func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	res := scopeNotifications(db, userID, true).UpdateColumn("is_read", true)
	return res.RowsAffected, res.Error
}
