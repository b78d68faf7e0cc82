package repository

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	gw *database.Gateway
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(gw *database.Gateway) UserRepository {
	return &GormUserRepository{gw: gw}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	return db.Omit(clause.Associations).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateFields applies a partial update
func (r *GormUserRepository) UpdateFields(ctx context.Context, id uint64, fields map[string]any) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	return db.Model(&models.User{ID: id}).Updates(fields).Error
}

// TouchLastLogin stamps the last login time
func (r *GormUserRepository) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	return db.Model(&models.User{ID: id}).
		UpdateColumn("last_login_at", at).Error
}
