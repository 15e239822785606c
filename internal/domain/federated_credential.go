package domain

type FederatedCredential struct {
	ID               string       `gorm:"primaryKey;size:50" json:"id"`
	UserID           string       `gorm:"size:50;not null;index:idx_federated_credentials_user" json:"user_id"`
	AuthProviderType AuthProvider `gorm:"size:32;not null;uniqueIndex:idx_federated_provider_auth" json:"auth_provider_type"`
	AuthID           string       `gorm:"size:255;not null;uniqueIndex:idx_federated_provider_auth" json:"auth_id"`
	AuthToken        string       `gorm:"size:1000;not null" json:"-"`
	ExpiresAt        int64        `gorm:"not null" json:"expires_at"`
	CreatedAt        int64        `gorm:"autoCreateTime:milli" json:"created_at"`
	UpdatedAt        int64        `gorm:"autoUpdateTime:milli" json:"updated_at"`
}
