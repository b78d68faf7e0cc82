package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/query"
)

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	gw *database.Gateway
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(gw *database.Gateway) MessageRepository {
	return &GormMessageRepository{gw: gw}
}

func (r *GormMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	return db.Omit(clause.Associations).Create(msg).Error
}

// ListByTeam returns newest first with senders preloaded
func (r *GormMessageRepository) ListByTeam(ctx context.Context, teamID uint64, page query.Page) ([]models.Message, int64, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var total int64
	if err := db.Model(&models.Message{}).Where("team_id = ?", teamID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.Message, 0)
	if err := db.
		Preload("Sender").
		Where("team_id = ?", teamID).
		Order("created_at DESC").Order("id DESC").
		Scopes(database.Paginate(page)).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
