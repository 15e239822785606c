package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store is the authoritative identity store. Repositories obtained from the Store passed to a
// WithinTransaction callback run inside that transaction.
type Store interface {
	Users() UserRepository
	LocalCredentials() LocalCredentialRepository
	FederatedCredentials() FederatedCredentialRepository
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

type GormStore struct {
	db *gorm.DB

	users     UserRepository
	local     LocalCredentialRepository
	federated FederatedCredentialRepository
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:        db,
		users:     NewUserRepository(db),
		local:     NewLocalCredentialRepository(db),
		federated: NewFederatedCredentialRepository(db),
	}
}

func (s *GormStore) Users() UserRepository                               { return s.users }
func (s *GormStore) LocalCredentials() LocalCredentialRepository         { return s.local }
func (s *GormStore) FederatedCredentials() FederatedCredentialRepository { return s.federated }

// WithinTransaction commits when fn returns nil and rolls back on error or panic.
func (s *GormStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
