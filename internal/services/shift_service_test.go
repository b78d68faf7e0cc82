package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/query"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/testutil"
)

type ShiftServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	service *ShiftService
	team    *models.Team

	manager, alice, outsider *models.User
	monday                   time.Time
}

func TestShiftServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ShiftServiceTestSuite))
}

func (s *ShiftServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	gw := testutil.NewGateway(s.T())
	s.db = gw.DB()
	store := repository.NewStore(gw)
	s.service = NewShiftService(store)

	s.manager = testutil.CreateUser(s.T(), s.db, "lead@example.com", models.RoleManager)
	s.alice = testutil.CreateUser(s.T(), s.db, "alice@example.com", models.RoleEmployee)
	s.outsider = testutil.CreateUser(s.T(), s.db, "out@example.com", models.RoleEmployee)

	teams := NewTeamService(store)
	team, err := teams.CreateTeam(s.ctx, identity(s.manager), "Support")
	s.Require().NoError(err)
	_, err = teams.JoinTeamByInvite(s.ctx, identity(s.alice), team.InviteCode)
	s.Require().NoError(err)
	s.team = team

	s.monday = time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
}

func (s *ShiftServiceTestSuite) shift(user *models.User, start time.Time, length time.Duration) (*models.Shift, error) {
	return s.service.CreateShift(s.ctx, identity(s.manager), s.team, CreateShiftInput{
		UserID:   user.ID,
		StartsAt: start,
		EndsAt:   start.Add(length),
		Notes:    "  front desk ",
	})
}

func (s *ShiftServiceTestSuite) TestCreateShift() {
	shift, err := s.shift(s.alice, s.monday, 8*time.Hour)
	s.Require().NoError(err)

	s.Equal(s.team.ID, shift.TeamID)
	s.Equal("front desk", shift.Notes)
	s.Equal(s.manager.ID, shift.CreatedBy)
	s.Equal(s.alice.Email, shift.User.Email)

	var notes []models.Notification
	s.Require().NoError(s.db.Where("user_id = ?", s.alice.ID).Find(&notes).Error)
	s.Require().Len(notes, 1)
	s.Equal(models.NotificationShiftAdded, notes[0].Type)
}

func (s *ShiftServiceTestSuite) TestCreateShift_Rejections() {
	_, err := s.shift(s.alice, s.monday, 0)
	s.ErrorIs(err, ErrShiftRange)

	_, err = s.shift(s.alice, s.monday, 25*time.Hour)
	s.ErrorIs(err, ErrShiftRange)

	_, err = s.shift(s.outsider, s.monday, time.Hour)
	s.ErrorIs(err, ErrShiftNotTeamMember)

	testutil.SetStatus(s.T(), s.db, s.alice, models.UserStatusSuspended)
	_, err = s.shift(s.alice, s.monday, time.Hour)
	s.ErrorIs(err, ErrShiftNotTeamMember)

	var count int64
	s.Require().NoError(s.db.Model(&models.Shift{}).Count(&count).Error)
	s.Zero(count)
}

func (s *ShiftServiceTestSuite) TestCreateShift_Overlap() {
	_, err := s.shift(s.alice, s.monday, 8*time.Hour)
	s.Require().NoError(err)

	_, err = s.shift(s.alice, s.monday.Add(4*time.Hour), 8*time.Hour)
	s.ErrorIs(err, ErrShiftOverlap)

	// Back-to-back is fine.
	_, err = s.shift(s.alice, s.monday.Add(8*time.Hour), 4*time.Hour)
	s.NoError(err)

	// Someone else at the same time is fine.
	_, err = s.shift(s.manager, s.monday, 8*time.Hour)
	s.NoError(err)
}

func (s *ShiftServiceTestSuite) TestListShifts_Range() {
	for day := 0; day < 3; day++ {
		_, err := s.shift(s.alice, s.monday.AddDate(0, 0, day), 8*time.Hour)
		s.Require().NoError(err)
	}

	from := s.monday.AddDate(0, 0, 1)
	to := s.monday.AddDate(0, 0, 2)
	page, err := s.service.ListShifts(s.ctx, repository.ShiftFilter{
		TeamID: &s.team.ID,
		From:   &from,
		To:     &to,
		Page:   query.NewPage(1, 20),
	})
	s.Require().NoError(err)
	s.Require().Len(page.Shifts, 1)
	s.True(page.Shifts[0].StartsAt.Equal(from))
	s.Equal(s.alice.ID, page.Shifts[0].User.ID)

	userID := s.alice.ID
	page, err = s.service.ListShifts(s.ctx, repository.ShiftFilter{UserID: &userID, Page: query.NewPage(1, 2)})
	s.Require().NoError(err)
	s.Len(page.Shifts, 2)
	s.Equal(int64(3), page.Pagination.Total)
	s.True(page.Shifts[0].StartsAt.Before(page.Shifts[1].StartsAt))

	_, err = s.service.ListShifts(s.ctx, repository.ShiftFilter{From: &to, To: &from, Page: query.NewPage(1, 20)})
	s.Error(err)
}

func (s *ShiftServiceTestSuite) TestDeleteShift() {
	shift, err := s.shift(s.alice, s.monday, time.Hour)
	s.Require().NoError(err)

	other := &models.Team{ID: s.team.ID + 100}
	s.ErrorIs(s.service.DeleteShift(s.ctx, other, shift.ID), ErrShiftNotFound)

	s.Require().NoError(s.service.DeleteShift(s.ctx, s.team, shift.ID))
	s.ErrorIs(s.service.DeleteShift(s.ctx, s.team, shift.ID), ErrShiftNotFound)

	// The slot is free again.
	_, err = s.shift(s.alice, s.monday, time.Hour)
	s.NoError(err)
}
