package models

import "time"

// RefreshToken records an issued refresh token by its jti so it can be
// revoked server-side. The signed token itself is never stored.
type RefreshToken struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	JTI        string     `gorm:"column:jti;type:varchar(64);uniqueIndex;not null" json:"-"`
	UserID     uint64     `gorm:"not null;index" json:"userId"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expiresAt"`
	Revoked    bool       `gorm:"not null;default:false" json:"revoked"`
	RevokedAt  *time.Time `json:"revokedAt"`
	ReplacedBy *string    `gorm:"type:varchar(64)" json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Usable reports whether the token can still be exchanged at now.
func (t RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
