// Package user implements the User repository using PostgreSQL. Users are
// external identities; this backend only reads them.
package user

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/forgewell/appforge-backend/internal/adapter/postgres"
	"github.com/forgewell/appforge-backend/internal/domain"
)

// Repo provides user lookup backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const userColumns = `id, email, name, created_at, updated_at`

// Find returns the single user matching the filter.
// Returns domain.ErrNotFound when none matches.
func (r *Repo) Find(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := qb.
		Select(userColumns).
		From("users")

	if filter.ID != nil {
		b = b.Where(sq.Eq{"id": *filter.ID})
	}
	if filter.Email != nil {
		b = b.Where(sq.Eq{"email": *filter.Email})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}

	u, err := scanUser(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "user", uuid.Nil)
	}
	return u, nil
}

// GetByIDs returns users for multiple ids (batch for DataLoader). Missing ids
// are simply absent from the result.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select(userColumns).
		From("users").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user batch query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("get users by ids: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}

	return users, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
