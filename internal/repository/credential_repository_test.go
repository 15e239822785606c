package repository

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/identity-core/internal/domain"
)

func TestLocalCredentialRepositoryLookups(t *testing.T) {
	db := newRepositoryDBForTest(t)
	seedUser(t, NewUserRepository(db), "u1", "u1@example.com")
	repo := NewLocalCredentialRepository(db)
	ctx := t.Context()

	cred := &domain.LocalCredential{ID: "c1", UserID: "u1", Salt: "salt", Passwd: "digest"}
	if err := repo.Create(ctx, cred); err != nil {
		t.Fatalf("create: %v", err)
	}
	byID, err := repo.FindByID(ctx, "c1")
	if err != nil || byID.UserID != "u1" {
		t.Fatalf("find by id: %+v %v", byID, err)
	}
	byUser, err := repo.FindByUserID(ctx, "u1")
	if err != nil || byUser.ID != "c1" {
		t.Fatalf("find by user: %+v %v", byUser, err)
	}
	if _, err := repo.FindByUserID(ctx, "u2"); !errors.Is(err, ErrLocalCredentialNotFound) {
		t.Fatalf("expected ErrLocalCredentialNotFound, got %v", err)
	}

	dup := &domain.LocalCredential{ID: "c2", UserID: "u1", Salt: "s", Passwd: "p"}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey for second credential of same user, got %v", err)
	}
}

func TestFederatedCredentialRepositoryProviderKeyIsUnique(t *testing.T) {
	db := newRepositoryDBForTest(t)
	users := NewUserRepository(db)
	seedUser(t, users, "u1", "u1@example.com")
	seedUser(t, users, "u2", "u2@example.com")
	repo := NewFederatedCredentialRepository(db)
	ctx := t.Context()

	first := &domain.FederatedCredential{ID: "f1", UserID: "u1", AuthProviderType: domain.AuthProviderGitHub, AuthID: "42", AuthToken: "t1", ExpiresAt: 10}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	other := &domain.FederatedCredential{ID: "f2", UserID: "u2", AuthProviderType: domain.AuthProviderGoogle, AuthID: "42", AuthToken: "t", ExpiresAt: 10}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("same auth id on another provider must be allowed: %v", err)
	}
	clash := &domain.FederatedCredential{ID: "f3", UserID: "u2", AuthProviderType: domain.AuthProviderGitHub, AuthID: "42", AuthToken: "t", ExpiresAt: 10}
	if err := repo.Create(ctx, clash); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	if err := repo.UpdateToken(ctx, "f1", "t2", 99); err != nil {
		t.Fatalf("update token: %v", err)
	}
	got, err := repo.FindByProvider(ctx, domain.AuthProviderGitHub, "42")
	if err != nil {
		t.Fatalf("find by provider: %v", err)
	}
	if got.ID != "f1" || got.AuthToken != "t2" || got.ExpiresAt != 99 {
		t.Fatalf("unexpected credential: %+v", got)
	}
	if _, err := repo.FindByProvider(ctx, domain.AuthProviderQQ, "42"); !errors.Is(err, ErrFederatedCredentialNotFound) {
		t.Fatalf("expected ErrFederatedCredentialNotFound, got %v", err)
	}
	if err := repo.UpdateToken(ctx, "missing", "t", 1); !errors.Is(err, ErrFederatedCredentialNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}
