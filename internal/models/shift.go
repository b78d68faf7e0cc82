package models

import (
	"time"

	"gorm.io/gorm"
)

// Shift is a scheduled work period of one team member.
type Shift struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	TeamID    uint64         `gorm:"not null;index" json:"teamId"`
	UserID    uint64         `gorm:"not null;index" json:"userId"`
	StartsAt  time.Time      `gorm:"not null;index" json:"startsAt"`
	EndsAt    time.Time      `gorm:"not null" json:"endsAt"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedBy uint64         `gorm:"not null" json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Team Team `gorm:"foreignKey:TeamID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}
