package models

import "time"

type TeamRole string

const (
	TeamRoleManager TeamRole = "manager"
	TeamRoleMember  TeamRole = "member"
)

// TeamMember is the join row between teams and users; the composite key
// keeps each (team, user) pair unique.
type TeamMember struct {
	TeamID   uint64    `gorm:"primarykey" json:"teamId"`
	UserID   uint64    `gorm:"primarykey" json:"userId"`
	Role     TeamRole  `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt time.Time `json:"joinedAt"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}
