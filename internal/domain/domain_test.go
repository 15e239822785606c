package domain

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Admin ")
	if err != nil || r != RoleAdmin {
		t.Fatalf("ParseRole admin: %v %v", r, err)
	}
	if _, err := ParseRole("root"); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if RoleAdmin.Level() >= RoleSubscriber.Level() {
		t.Fatal("admin must be more privileged than subscriber")
	}
	if Role("bogus").Level() != RoleSubscriber.Level() {
		t.Fatal("unknown roles must fall back to subscriber level")
	}
}

func TestAuthProviderSupportsFederated(t *testing.T) {
	if AuthProviderLocal.SupportsFederated() {
		t.Fatal("local provider must never be federated")
	}
	for _, p := range []AuthProvider{AuthProviderGitHub, AuthProviderGoogle, AuthProviderWeibo, AuthProviderQQ} {
		if !p.SupportsFederated() {
			t.Fatalf("%s should support federated auth", p)
		}
	}
	if _, err := ParseAuthProvider("myspace"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	p, err := ParseAuthProvider("GitHub")
	if err != nil || p != AuthProviderGitHub {
		t.Fatalf("ParseAuthProvider: %v %v", p, err)
	}
}

func TestUserIsLocked(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	cases := []struct {
		lockedUntil int64
		want        bool
	}{
		{0, false},
		{999_999, false},
		{1_000_000, false},
		{1_000_001, true},
	}
	for _, tc := range cases {
		u := &User{LockedUntil: tc.lockedUntil}
		if got := u.IsLocked(now); got != tc.want {
			t.Fatalf("IsLocked(lockedUntil=%d) = %v, want %v", tc.lockedUntil, got, tc.want)
		}
	}
}
