package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandeepkv93/identity-core/internal/domain"
)

const userCacheCodecVersion = 1

var errStaleCacheEntry = errors.New("stale user cache entry")

type userCacheEnvelope struct {
	Version int         `json:"v"`
	User    *cachedUser `json:"user"`
}

// cachedUser mirrors domain.User field for field so that cache payloads do not change shape
// when the domain type gains json tags or fields.
type cachedUser struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	ImageURL    string      `json:"image_url"`
	Role        domain.Role `json:"role"`
	LockedUntil int64       `json:"locked_until"`
	CreatedAt   int64       `json:"created_at"`
	UpdatedAt   int64       `json:"updated_at"`
}

func encodeCachedUser(u *domain.User) ([]byte, error) {
	return json.Marshal(userCacheEnvelope{
		Version: userCacheCodecVersion,
		User: &cachedUser{
			ID:          u.ID,
			Email:       u.Email,
			Name:        u.Name,
			ImageURL:    u.ImageURL,
			Role:        u.Role,
			LockedUntil: u.LockedUntil,
			CreatedAt:   u.CreatedAt,
			UpdatedAt:   u.UpdatedAt,
		},
	})
}

// decodeCachedUser returns errStaleCacheEntry for payloads written by another codec version
// or that do not parse.
func decodeCachedUser(payload []byte) (*domain.User, error) {
	var env userCacheEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errStaleCacheEntry, err)
	}
	if env.Version != userCacheCodecVersion || env.User == nil || env.User.ID == "" {
		return nil, errStaleCacheEntry
	}
	c := env.User
	return &domain.User{
		ID:          c.ID,
		Email:       c.Email,
		Name:        c.Name,
		ImageURL:    c.ImageURL,
		Role:        c.Role,
		LockedUntil: c.LockedUntil,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}
