package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/sandeepkv93/identity-core/internal/observability"
)

var (
	ErrDuplicateKey                = errors.New("duplicate key")
	ErrUserNotFound                = errors.New("user not found")
	ErrLocalCredentialNotFound     = errors.New("local credential not found")
	ErrFederatedCredentialNotFound = errors.New("federated credential not found")
	ErrInvalidPageFilter           = errors.New("invalid page filter")
)

// IsUniqueViolation reports whether err is a rejected insert or update on a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "unique violation")
}

func translateWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) && !errors.Is(err, ErrDuplicateKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrLocalCredentialNotFound) ||
		errors.Is(err, ErrFederatedCredentialNotFound)
}

func recordOperation(ctx context.Context, entity, operation string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrDuplicateKey):
		outcome = "conflict"
	case isNotFound(err):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	observability.RecordRepositoryOperation(ctx, entity, operation, outcome)
}
