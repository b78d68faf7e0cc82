package models

import "time"

// Message is a team channel post.
type Message struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TeamID    uint64    `gorm:"not null;index" json:"teamId"`
	SenderID  uint64    `gorm:"not null;index" json:"senderId"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"createdAt"`

	Team   Team `gorm:"foreignKey:TeamID" json:"-"`
	Sender User `gorm:"foreignKey:SenderID" json:"-"`
}
