package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/models"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	gw *database.Gateway
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(gw *database.Gateway) TeamRepository {
	return &GormTeamRepository{gw: gw}
}

// Create creates a new team
func (r *GormTeamRepository) Create(ctx context.Context, team *models.Team) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	return db.Omit(clause.Associations).Create(team).Error
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(ctx context.Context, id uint64) (*models.Team, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var team models.Team
	if err := db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByInviteCode finds a team by invite code
func (r *GormTeamRepository) FindByInviteCode(ctx context.Context, code string) (*models.Team, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var team models.Team
	if err := db.Where("invite_code = ?", code).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(ctx context.Context, team *models.Team) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	return db.Omit(clause.Associations).Save(team).Error
}

// Delete soft deletes a team and its boards and drops its memberships.
// Tasks on those boards stay visible without a board name.
func (r *GormTeamRepository) Delete(ctx context.Context, id uint64) error {
	return r.gw.Transaction(ctx, func(tx *database.Gateway) error {
		db, cancel := tx.Conn(ctx)
		defer cancel()

		if err := db.Where("team_id = ?", id).Delete(&models.Board{}).Error; err != nil {
			return err
		}
		if err := db.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}

		res := db.Delete(&models.Team{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List lists every live team
func (r *GormTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	teams := make([]models.Team, 0)
	if err := db.Order("id ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// AddMember adds a member to a team
func (r *GormTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	return db.Omit(clause.Associations).Create(member).Error
}

// RemoveMember removes a member from a team
func (r *GormTeamRepository) RemoveMember(ctx context.Context, teamID, userID uint64) error {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	res := db.Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindMember finds a specific team member
func (r *GormTeamRepository) FindMember(ctx context.Context, teamID, userID uint64) (*models.TeamMember, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	var member models.TeamMember
	if err := db.Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembershipsByUserID lists all teams a user is a member of
func (r *GormTeamRepository) ListMembershipsByUserID(ctx context.Context, userID uint64) ([]models.TeamMember, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	memberships := make([]models.TeamMember, 0)
	if err := db.
		Joins("Team").
		Where("team_members.user_id = ?", userID).
		Order("team_members.team_id ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListMembers lists all members of a team
func (r *GormTeamRepository) ListMembers(ctx context.Context, teamID uint64) ([]models.TeamMember, error) {
	db, cancel := r.gw.Conn(ctx)
	defer cancel()

	members := make([]models.TeamMember, 0)
	if err := db.Preload("User").
		Where("team_id = ?", teamID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
