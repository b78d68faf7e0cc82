package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/models"
)

// GormBoardRepository is a GORM implementation of BoardRepository
type GormBoardRepository struct {
	gw *database.Gateway
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(gw *database.Gateway) BoardRepository {
	return &GormBoardRepository{gw: gw}
}

func (r *GormBoardRepository) Create(ctx context.Context, board *models.Board) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	return db.Omit(clause.Associations).Create(board).Error
}

// FindByID finds a live board whose team is also live
func (r *GormBoardRepository) FindByID(ctx context.Context, id uint64) (*models.Board, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var board models.Board
	if err := db.
		Joins("JOIN teams ON teams.id = boards.team_id AND teams.deleted_at IS NULL").
		First(&board, "boards.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *GormBoardRepository) ListByTeam(ctx context.Context, teamID uint64) ([]models.Board, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	boards := make([]models.Board, 0)
	if err := db.
		Where("team_id = ?", teamID).
		Order("id ASC").
		Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}
