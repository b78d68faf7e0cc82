package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/models"
)

// GormRefreshTokenRepository is a GORM implementation of RefreshTokenRepository
type GormRefreshTokenRepository struct {
	gw *database.Gateway
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository
func NewRefreshTokenRepository(gw *database.Gateway) RefreshTokenRepository {
	return &GormRefreshTokenRepository{gw: gw}
}

func (r *GormRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	return db.Omit(clause.Associations).Create(token).Error
}

func (r *GormRefreshTokenRepository) FindByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	if err := db.Where("jti = ?", jti).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// Rotate revokes oldJTI and persists next. The revoke is conditional on the
// old token still being active, so of two concurrent rotations only one
// succeeds. Callers run it inside a transaction.
func (r *GormRefreshTokenRepository) Rotate(ctx context.Context, oldJTI string, next *models.RefreshToken, at time.Time) (bool, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	res := db.Model(&models.RefreshToken{}).
		Where("jti = ? AND revoked = ?", oldJTI, false).
		Updates(map[string]any{
			"revoked":     true,
			"revoked_at":  at,
			"replaced_by": next.JTI,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	if err := db.Omit(clause.Associations).Create(next).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *GormRefreshTokenRepository) Revoke(ctx context.Context, jti string, at time.Time) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	res := db.Model(&models.RefreshToken{}).
		Where("jti = ? AND revoked = ?", jti, false).
		Updates(map[string]any{"revoked": true, "revoked_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uint64, at time.Time) (int64, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	res := db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Updates(map[string]any{"revoked": true, "revoked_at": at})
	return res.RowsAffected, res.Error
}
