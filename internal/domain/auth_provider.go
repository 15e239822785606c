package domain

import (
	"fmt"
	"strings"
)

type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGitHub AuthProvider = "github"
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderWeibo  AuthProvider = "weibo"
	AuthProviderQQ     AuthProvider = "qq"
)

var federatedCapable = map[AuthProvider]bool{
	AuthProviderLocal:  false,
	AuthProviderGitHub: true,
	AuthProviderGoogle: true,
	AuthProviderWeibo:  true,
	AuthProviderQQ:     true,
}

// SupportsFederated reports whether the provider type can back a federated credential at all.
// Deployments narrow this further through configuration.
func (p AuthProvider) SupportsFederated() bool {
	return federatedCapable[p]
}

func (p AuthProvider) Valid() bool {
	_, ok := federatedCapable[p]
	return ok
}

func ParseAuthProvider(v string) (AuthProvider, error) {
	p := AuthProvider(strings.ToLower(strings.TrimSpace(v)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown auth provider %q", v)
	}
	return p, nil
}
