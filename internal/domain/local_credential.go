package domain

type LocalCredential struct {
	ID        string `gorm:"primaryKey;size:50" json:"id"`
	UserID    string `gorm:"uniqueIndex;size:50;not null" json:"user_id"`
	Salt      string `gorm:"size:64;not null" json:"-"`
	Passwd    string `gorm:"size:64;not null" json:"-"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	UpdatedAt int64  `gorm:"autoUpdateTime:milli" json:"updated_at"`
}
