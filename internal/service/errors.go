package service

import "errors"

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrDuplicateEmail          = errors.New("email already registered")
	ErrDuplicateCredential     = errors.New("federated credential conflict")
	ErrUnsupportedProvider     = errors.New("unsupported auth provider")
	ErrUserNotFound            = errors.New("user not found")
	ErrLocalCredentialNotFound = errors.New("local credential not found")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrUserLocked              = errors.New("user locked")
)
