package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sandeepkv93/identity-core/internal/domain"
)

func TestPageRequestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"defaults", PageRequest{}, PageRequest{Page: DefaultPage, PageSize: DefaultPageSize}},
		{"negative page", PageRequest{Page: -2, PageSize: 5}, PageRequest{Page: 1, PageSize: 5}},
		{"oversized page", PageRequest{Page: 3, PageSize: MaxPageSize + 1}, PageRequest{Page: 3, PageSize: MaxPageSize}},
		{"role kept", PageRequest{Page: 2, PageSize: 10, Role: domain.RoleAdmin}, PageRequest{Page: 2, PageSize: 10, Role: domain.RoleAdmin}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.in.normalize()
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if got != tc.want {
				t.Fatalf("normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
	if _, err := (PageRequest{Role: "root"}).normalize(); !errors.Is(err, ErrInvalidPageFilter) {
		t.Fatalf("expected ErrInvalidPageFilter, got %v", err)
	}
}

func TestTotalPagesAndHasNext(t *testing.T) {
	if got := totalPages(0, 10); got != 0 {
		t.Fatalf("empty total pages = %d", got)
	}
	if got := totalPages(21, 10); got != 3 {
		t.Fatalf("total pages = %d, want 3", got)
	}
	if got := (PageRequest{Page: 3, PageSize: 10}).offset(); got != 20 {
		t.Fatalf("offset = %d, want 20", got)
	}
	if !(PageResult[int]{Page: 2, TotalPages: 3}).HasNext() {
		t.Fatal("page 2 of 3 should have a next page")
	}
	if (PageResult[int]{Page: 3, TotalPages: 3}).HasNext() {
		t.Fatal("last page should not have a next page")
	}
}

func TestUserRepositoryListPagedByRole(t *testing.T) {
	repo := NewUserRepository(newRepositoryDBForTest(t))
	ctx := t.Context()
	for i := 1; i <= 4; i++ {
		seedUser(t, repo, fmt.Sprintf("u%d", i), fmt.Sprintf("u%d@example.com", i))
	}
	for _, id := range []string{"u1", "u3"} {
		if err := repo.UpdateRole(ctx, id, domain.RoleAdmin); err != nil {
			t.Fatalf("promote %s: %v", id, err)
		}
	}

	page, err := repo.ListPaged(ctx, PageRequest{Page: 1, PageSize: 1, Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if page.Total != 2 || page.TotalPages != 2 || !page.HasNext() {
		t.Fatalf("unexpected admin page: %+v", page)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "u3" {
		t.Fatalf("expected newest admin u3 first, got %+v", page.Items)
	}

	if _, err := repo.ListPaged(ctx, PageRequest{Role: "root"}); !errors.Is(err, ErrInvalidPageFilter) {
		t.Fatalf("expected ErrInvalidPageFilter, got %v", err)
	}
}
