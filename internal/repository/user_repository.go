package repository

import (
	"context"
	"errors"

	"github.com/sandeepkv93/identity-core/internal/domain"

	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.User], error)
	Create(ctx context.Context, user *domain.User) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	UpdateLockedUntil(ctx context.Context, id string, lockedUntil int64) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrUserNotFound
	}
	recordOperation(ctx, "user", "find_by_id", err)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []domain.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	recordOperation(ctx, "user", "find_by_ids", err)
	return users, err
}

// FindByEmail matches case-insensitively. Local addresses are stored lowercased but federated
// placeholders keep the case of the user id.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrUserNotFound
	}
	recordOperation(ctx, "user", "find_by_email", err)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.User], error) {
	normalized, err := req.normalize()
	if err != nil {
		recordOperation(ctx, "user", "list_paged", err)
		return PageResult[domain.User]{}, err
	}
	result := PageResult[domain.User]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	base := r.db.WithContext(ctx).Model(&domain.User{})
	if normalized.Role != "" {
		base = base.Where("role = ?", normalized.Role)
	}
	if err := base.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		recordOperation(ctx, "user", "list_paged", err)
		return PageResult[domain.User]{}, err
	}
	if err := base.Session(&gorm.Session{}).Order("id desc").Offset(normalized.offset()).Limit(normalized.PageSize).Find(&result.Items).Error; err != nil {
		recordOperation(ctx, "user", "list_paged", err)
		return PageResult[domain.User]{}, err
	}
	result.TotalPages = totalPages(result.Total, normalized.PageSize)
	recordOperation(ctx, "user", "list_paged", nil)
	return result, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	err := translateWriteErr(r.db.WithContext(ctx).Create(user).Error)
	recordOperation(ctx, "user", "create", err)
	return err
}

func (r *GormUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.updateColumn(ctx, "update_role", id, "role", role)
}

func (r *GormUserRepository) UpdateLockedUntil(ctx context.Context, id string, lockedUntil int64) error {
	return r.updateColumn(ctx, "update_locked_until", id, "locked_until", lockedUntil)
}

// updateColumn writes a single column without touching updated_at or any other field.
func (r *GormUserRepository) updateColumn(ctx context.Context, op, id, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).UpdateColumn(column, value)
	err := translateWriteErr(res.Error)
	if err == nil && res.RowsAffected == 0 {
		err = ErrUserNotFound
	}
	recordOperation(ctx, "user", op, err)
	return err
}
