package domain

import "time"

type User struct {
	ID          string `gorm:"primaryKey;size:50" json:"id"`
	Email       string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Name        string `gorm:"size:100;not null" json:"name"`
	ImageURL    string `gorm:"size:1000;not null" json:"image_url"`
	Role        Role   `gorm:"size:32;not null;index:idx_users_role" json:"role"`
	LockedUntil int64  `gorm:"not null;default:0" json:"locked_until"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	UpdatedAt   int64  `gorm:"autoUpdateTime:milli" json:"updated_at"`
}

// IsLocked reports whether the account is locked at the given instant.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil > 0 && now.UnixMilli() < u.LockedUntil
}
