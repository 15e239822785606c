package identityctl

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/identity-core/internal/domain"
)

func userDetails(u *domain.User) []string {
	lock := "unlocked"
	if u.LockedUntil > 0 {
		lock = "locked until " + formatMillis(u.LockedUntil)
	}
	return []string{
		"id: " + u.ID,
		"email: " + u.Email,
		"name: " + u.Name,
		"image_url: " + u.ImageURL,
		"role: " + string(u.Role),
		"lock: " + lock,
		"created_at: " + formatMillis(u.CreatedAt),
	}
}

func federatedDetails(c *domain.FederatedCredential) []string {
	return []string{
		"id: " + c.ID,
		"user_id: " + c.UserID,
		"provider: " + string(c.AuthProviderType),
		"auth_id: " + c.AuthID,
		"expires_at: " + formatMillis(c.ExpiresAt),
	}
}

// localCredentialDetails omits the salt and digest.
func localCredentialDetails(c *domain.LocalCredential) []string {
	return []string{
		"id: " + c.ID,
		"user_id: " + c.UserID,
		fmt.Sprintf("salt_length: %d", len(c.Salt)),
	}
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
