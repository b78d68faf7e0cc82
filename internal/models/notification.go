package models

import "time"

type NotificationType string

const (
	NotificationTaskAssigned NotificationType = "task_assigned"
	NotificationTaskStatus   NotificationType = "task_status_changed"
	NotificationTeamJoined   NotificationType = "team_member_joined"
	NotificationShiftAdded   NotificationType = "shift_scheduled"
)

type Notification struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	UserID      uint64           `gorm:"not null;index" json:"userId"`
	Type        NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	Read        bool             `gorm:"column:is_read;not null;default:false;index" json:"read"`
	RelatedType string           `gorm:"type:varchar(40)" json:"relatedType,omitempty"`
	RelatedID   *uint64          `json:"relatedId,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
