package repository

import "github.com/sandeepkv93/identity-core/internal/domain"

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects one page of users, newest id first. An empty Role lists every role.
type PageRequest struct {
	Page     int
	PageSize int
	Role     domain.Role
}

type PageResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// HasNext reports whether a later page holds more items.
func (p PageResult[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// normalize clamps page and size into range and rejects unknown role filters.
func (r PageRequest) normalize() (PageRequest, error) {
	out := r
	if out.Page < 1 {
		out.Page = DefaultPage
	}
	switch {
	case out.PageSize < 1:
		out.PageSize = DefaultPageSize
	case out.PageSize > MaxPageSize:
		out.PageSize = MaxPageSize
	}
	if out.Role != "" && !out.Role.Valid() {
		return PageRequest{}, ErrInvalidPageFilter
	}
	return out, nil
}

func (r PageRequest) offset() int {
	return (r.Page - 1) * r.PageSize
}

func totalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}
