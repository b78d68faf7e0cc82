package models

import (
	"time"

	"gorm.io/gorm"
)

type Team struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	ManagerID  uint64         `gorm:"not null;index" json:"managerId"`
	InviteCode string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"inviteCode"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Manager User         `gorm:"foreignKey:ManagerID" json:"-"`
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"-"`
	Boards  []Board      `gorm:"foreignKey:TeamID" json:"-"`
}
