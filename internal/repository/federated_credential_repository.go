package repository

import (
	"context"
	"errors"

	"github.com/sandeepkv93/identity-core/internal/domain"

	"gorm.io/gorm"
)

type FederatedCredentialRepository interface {
	FindByProvider(ctx context.Context, provider domain.AuthProvider, authID string) (*domain.FederatedCredential, error)
	Create(ctx context.Context, credential *domain.FederatedCredential) error
	UpdateToken(ctx context.Context, id, token string, expiresAt int64) error
}

type GormFederatedCredentialRepository struct{ db *gorm.DB }

func NewFederatedCredentialRepository(db *gorm.DB) FederatedCredentialRepository {
	return &GormFederatedCredentialRepository{db: db}
}

func (r *GormFederatedCredentialRepository) FindByProvider(ctx context.Context, provider domain.AuthProvider, authID string) (*domain.FederatedCredential, error) {
	var c domain.FederatedCredential
	err := r.db.WithContext(ctx).
		Where("auth_provider_type = ? AND auth_id = ?", provider, authID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrFederatedCredentialNotFound
	}
	recordOperation(ctx, "federated_credential", "find_by_provider", err)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormFederatedCredentialRepository) Create(ctx context.Context, credential *domain.FederatedCredential) error {
	err := translateWriteErr(r.db.WithContext(ctx).Create(credential).Error)
	recordOperation(ctx, "federated_credential", "create", err)
	return err
}

// UpdateToken refreshes the token and expiry columns only.
func (r *GormFederatedCredentialRepository) UpdateToken(ctx context.Context, id, token string, expiresAt int64) error {
	res := r.db.WithContext(ctx).Model(&domain.FederatedCredential{}).
		Where("id = ?", id).
		Updates(map[string]any{"auth_token": token, "expires_at": expiresAt})
	err := translateWriteErr(res.Error)
	if err == nil && res.RowsAffected == 0 {
		err = ErrFederatedCredentialNotFound
	}
	recordOperation(ctx, "federated_credential", "update_token", err)
	return err
}
