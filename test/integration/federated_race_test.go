//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/identity-core/internal/domain"
	"github.com/sandeepkv93/identity-core/internal/service"
)

func TestConcurrentFirstFederatedLoginsConvergeOnOneUser(t *testing.T) {
	env := newIdentityIntegrationEnv(t)
	ctx := context.Background()

	const callers = 8
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		userIDs = make([]string, callers)
		errs    = make([]error, callers)
	)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			cred, err := env.users.ResolveFederatedLogin(ctx, domain.AuthProviderGitHub, service.FederatedAssertion{
				AuthID:   "octocat",
				Name:     "Octo Cat",
				Token:    fmt.Sprintf("token-%d", i),
				Lifetime: time.Hour,
			})
			errs[i] = err
			if err == nil {
				userIDs[i] = cred.UserID
			}
		}()
	}
	close(start)
	wg.Wait()

	winner := userIDs[0]
	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d must resolve the login, got %v", i, err)
		}
		if userIDs[i] == "" || userIDs[i] != winner {
			t.Fatalf("caller %d resolved user %q, want %q", i, userIDs[i], winner)
		}
	}

	var users, creds int64
	env.db.Model(&domain.User{}).Count(&users)
	env.db.Model(&domain.FederatedCredential{}).Count(&creds)
	if users != 1 || creds != 1 {
		t.Fatalf("expected exactly one user and credential, got %d users %d credentials", users, creds)
	}
}

func TestDuplicateEmailOnPostgresMapsToDomainError(t *testing.T) {
	env := newIdentityIntegrationEnv(t)
	ctx := context.Background()

	if _, err := env.users.CreateLocalUser(ctx, "race@example.com", "secret", "Race", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := env.users.CreateLocalUser(ctx, "RACE@example.com", "secret", "Race", "")
	if !errors.Is(err, service.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail from unique violation, got %v", err)
	}
}

func TestRoleChangeIsVisibleThroughRedisCache(t *testing.T) {
	env := newIdentityIntegrationEnv(t)
	ctx := context.Background()

	u, err := env.users.CreateLocalUser(ctx, "cache@example.com", "secret", "Cache", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.users.GetUser(ctx, u.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if n, err := env.redis.HExists(ctx, "_users", u.ID).Result(); err != nil || !n {
		t.Fatalf("expected cached entry in redis hash, got %v %v", n, err)
	}
	if err := env.users.SetRole(ctx, u, domain.RoleContributor); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if n, _ := env.redis.HExists(ctx, "_users", u.ID).Result(); n {
		t.Fatal("expected set-role to evict the cached entry")
	}
	reloaded, err := env.users.GetUser(ctx, u.ID)
	if err != nil || reloaded.Role != domain.RoleContributor {
		t.Fatalf("expected contributor role after reload, got %+v %v", reloaded, err)
	}
}
