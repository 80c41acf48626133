package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/forgewell/appforge-backend/internal/domain"
)

// SQLSTATE class 23 (integrity constraint violation) codes the repos care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MapError rewrites driver errors as domain sentinels so services never see
// pgx types. Context cancellation and deadline errors pass through unmapped.
func MapError(err error, resource string, id uuid.UUID) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", resource, id, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", resource, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s %s: %w", resource, id, domain.ErrAlreadyExists)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s %s: %w", resource, id, domain.ErrNotFound)
		case pgCheckViolation:
			return fmt.Errorf("%s %s: %w", resource, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", resource, id, err)
}
