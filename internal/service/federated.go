package service

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// FederatedAssertion is what a completed third-party login proves about an account.
type FederatedAssertion struct {
	AuthID   string
	Name     string
	ImageURL string
	Token    string
	Lifetime time.Duration
}

// FederatedAssertionFromToken builds an assertion from an exchanged oauth2 token. A token
// without an expiry, or one already expired, yields a zero lifetime. A blank display name
// falls back to the account id.
func FederatedAssertionFromToken(accountID, name, imageURL string, token *oauth2.Token, now time.Time) (FederatedAssertion, error) {
	if token == nil || token.AccessToken == "" {
		return FederatedAssertion{}, fmt.Errorf("%w: oauth2 token is required", ErrInvalidInput)
	}
	if strings.TrimSpace(accountID) == "" {
		return FederatedAssertion{}, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(name) == "" {
		name = accountID
	}
	var lifetime time.Duration
	if !token.Expiry.IsZero() {
		lifetime = max(token.Expiry.Sub(now), 0)
	}
	return FederatedAssertion{
		AuthID:   accountID,
		Name:     name,
		ImageURL: imageURL,
		Token:    token.AccessToken,
		Lifetime: lifetime,
	}, nil
}

func (a FederatedAssertion) validate() error {
	if strings.TrimSpace(a.AuthID) == "" {
		return fmt.Errorf("%w: auth id is required", ErrInvalidInput)
	}
	if a.Token == "" {
		return fmt.Errorf("%w: auth token is required", ErrInvalidInput)
	}
	if a.Lifetime < 0 {
		return fmt.Errorf("%w: token lifetime must not be negative", ErrInvalidInput)
	}
	return nil
}
