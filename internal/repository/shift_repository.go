package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/models"
)

// GormShiftRepository is a GORM implementation of ShiftRepository
type GormShiftRepository struct {
	gw *database.Gateway
}

// NewShiftRepository creates a new ShiftRepository
func NewShiftRepository(gw *database.Gateway) ShiftRepository {
	return &GormShiftRepository{gw: gw}
}

func (r *GormShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	return db.Omit(clause.Associations).Create(shift).Error
}

func (r *GormShiftRepository) FindByID(ctx context.Context, id uint64) (*models.Shift, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var shift models.Shift
	if err := db.Preload("User").First(&shift, id).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

func filterShifts(db *gorm.DB, filter ShiftFilter) *gorm.DB {
	db = db.Model(&models.Shift{}).
		Joins("JOIN teams ON teams.id = shifts.team_id AND teams.deleted_at IS NULL")
	if filter.TeamID != nil {
		db = db.Where("shifts.team_id = ?", *filter.TeamID)
	}
	if filter.UserID != nil {
		db = db.Where("shifts.user_id = ?", *filter.UserID)
	}
	if filter.From != nil {
		db = db.Where("shifts.ends_at > ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("shifts.starts_at < ?", *filter.To)
	}
	return db
}

func (r *GormShiftRepository) List(ctx context.Context, filter ShiftFilter) ([]models.Shift, int64, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var total int64
	if err := filterShifts(db, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.Shift, 0)
	if err := filterShifts(db, filter).
		Preload("User").
		Order("shifts.starts_at ASC").Order("shifts.id ASC").
		Scopes(database.Paginate(filter.Page)).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormShiftRepository) HasOverlap(ctx context.Context, userID uint64, start, end time.Time) (bool, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var n int64
	err := filterShifts(db, ShiftFilter{UserID: &userID, From: &start, To: &end}).
		Count(&n).Error
	return n > 0, err
}

func (r *GormShiftRepository) Delete(ctx context.Context, id uint64) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	tx := db.Delete(&models.Shift{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
