package repository

import (
	"context"
	"errors"

	"github.com/sandeepkv93/identity-core/internal/domain"

	"gorm.io/gorm"
)

type LocalCredentialRepository interface {
	Create(ctx context.Context, credential *domain.LocalCredential) error
	FindByID(ctx context.Context, id string) (*domain.LocalCredential, error)
	FindByUserID(ctx context.Context, userID string) (*domain.LocalCredential, error)
}

type GormLocalCredentialRepository struct {
	db *gorm.DB
}

func NewLocalCredentialRepository(db *gorm.DB) LocalCredentialRepository {
	return &GormLocalCredentialRepository{db: db}
}

func (r *GormLocalCredentialRepository) Create(ctx context.Context, credential *domain.LocalCredential) error {
	err := translateWriteErr(r.db.WithContext(ctx).Create(credential).Error)
	recordOperation(ctx, "local_credential", "create", err)
	return err
}

func (r *GormLocalCredentialRepository) FindByID(ctx context.Context, id string) (*domain.LocalCredential, error) {
	return r.findOne(ctx, "find_by_id", "id = ?", id)
}

func (r *GormLocalCredentialRepository) FindByUserID(ctx context.Context, userID string) (*domain.LocalCredential, error) {
	return r.findOne(ctx, "find_by_user_id", "user_id = ?", userID)
}

func (r *GormLocalCredentialRepository) findOne(ctx context.Context, op, query string, arg string) (*domain.LocalCredential, error) {
	var c domain.LocalCredential
	err := r.db.WithContext(ctx).Where(query, arg).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrLocalCredentialNotFound
	}
	recordOperation(ctx, "local_credential", op, err)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
