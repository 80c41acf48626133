// Package version implements the EntityVersion repository using PostgreSQL.
// Snapshots are insert-only; the WHERE clause of every read is built with
// squirrel and always ANDs the parent entity id, so a caller-supplied filter
// can narrow but never widen the scope.
package version

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

// Repo provides version history persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new version repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const versionColumns = `id, entity_id, version_number, name, display_name, commit_message, created_at`

// ListByEntityID returns the entity's version history matching the filter,
// newest first. The entity scope is forced: the filter cannot reach versions
// of other entities.
func (r *Repo) ListByEntityID(ctx context.Context, entityID uuid.UUID, filter domain.VersionFilter) ([]*domain.EntityVersion, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := qb.
		Select(versionColumns).
		From("entity_versions").
		Where(sq.Eq{"entity_id": entityID}).
		OrderBy("version_number DESC")

	if filter.VersionNumber != nil {
		b = b.Where(sq.Eq{"version_number": *filter.VersionNumber})
	}
	if filter.MinVersionNumber != nil {
		b = b.Where(sq.GtOrEq{"version_number": *filter.MinVersionNumber})
	}
	if filter.MaxVersionNumber != nil {
		b = b.Where(sq.LtOrEq{"version_number": *filter.MaxVersionNumber})
	}
	if filter.Limit > 0 {
		b = b.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		b = b.Offset(uint64(filter.Offset))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build version list query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	versions := []*domain.EntityVersion{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("list versions: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}

	return versions, nil
}

// Create inserts a new snapshot and returns the persisted row.
// Returns domain.ErrAlreadyExists when (entity_id, version_number) collides.
func (r *Repo) Create(ctx context.Context, v *domain.EntityVersion) (*domain.EntityVersion, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Insert("entity_versions").
		Columns("entity_id", "version_number", "name", "display_name", "commit_message").
		Values(v.EntityID, v.VersionNumber, v.Name, v.DisplayName, v.CommitMessage).
		Suffix("RETURNING " + versionColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build version insert: %w", err)
	}

	created, err := scanVersion(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "version", uuid.Nil)
	}
	return created, nil
}

// NextVersionNumber returns the next monotonically increasing history number
// for the entity. The draft itself is number 0, so the first snapshot is 1.
func (r *Repo) NextVersionNumber(ctx context.Context, entityID uuid.UUID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select("COALESCE(MAX(version_number) + 1, 1)").
		From("entity_versions").
		Where(sq.Eq{"entity_id": entityID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build next version query: %w", err)
	}

	var number int
	if err := querier.QueryRow(ctx, query, args...).Scan(&number); err != nil {
		return 0, fmt.Errorf("next version number: %w", err)
	}
	return number, nil
}

func scanVersion(row pgx.Row) (*domain.EntityVersion, error) {
	var v domain.EntityVersion
	err := row.Scan(
		&v.ID,
		&v.EntityID,
		&v.VersionNumber,
		&v.Name,
		&v.DisplayName,
		&v.CommitMessage,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
