package service

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	maxEmailLength    = 100
	maxNameLength     = 100
	maxImageURLLength = 1000
)

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func checkEmail(v string) (string, error) {
	email := normalizeEmail(v)
	if email == "" || len(email) > maxEmailLength {
		return "", fmt.Errorf("%w: email must be 1-%d characters", ErrInvalidInput, maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: malformed email %q", ErrInvalidInput, v)
	}
	return email, nil
}

func checkName(v string) (string, error) {
	name := strings.TrimSpace(v)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidInput, maxNameLength)
	}
	return name, nil
}

// checkImageURL substitutes def for a blank value.
func checkImageURL(v, def string) (string, error) {
	raw := strings.TrimSpace(v)
	if raw == "" {
		return def, nil
	}
	if len(raw) > maxImageURLLength {
		return "", fmt.Errorf("%w: image url longer than %d characters", ErrInvalidInput, maxImageURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: image url must be an absolute http(s) url", ErrInvalidInput)
	}
	return raw, nil
}

func checkPassword(v string) error {
	if v == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	return nil
}
