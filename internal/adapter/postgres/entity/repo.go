// Package entity implements the Entity repository using PostgreSQL.
// It provides entity reads and writes including the soft-delete rename and
// the single-holder edit lock column.
package entity

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/forgewell/appforge-backend/internal/adapter/postgres"
	"github.com/forgewell/appforge-backend/internal/domain"
)

// Repo provides entity persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new entity repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const entityColumns = `id, app_id, name, display_name, plural_display_name, description,
locked_by_user_id, created_at, updated_at, deleted_at`

// GetByID returns an entity by primary key. Soft-deleted entities are not
// returned. Returns domain.ErrNotFound when absent.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select(entityColumns).
		From("entities").
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build entity query: %w", err)
	}

	e, err := scanEntity(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "entity", id)
	}
	return e, nil
}

// List returns entities matching the filter, ordered by creation time.
// Returns an empty slice (not nil) when nothing matches.
func (r *Repo) List(ctx context.Context, filter domain.EntityFilter) ([]*domain.Entity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := qb.
		Select(entityColumns).
		From("entities").
		OrderBy("created_at", "id")

	if filter.AppID != nil {
		b = b.Where(sq.Eq{"app_id": *filter.AppID})
	}
	if filter.Name != nil {
		b = b.Where(sq.ILike{"name": "%" + *filter.Name + "%"})
	}
	if !filter.IncludeDeleted {
		b = b.Where(sq.Eq{"deleted_at": nil})
	}
	if filter.Limit > 0 {
		b = b.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		b = b.Offset(uint64(filter.Offset))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build entity list query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	entities := []*domain.Entity{}
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("list entities: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}

	return entities, nil
}

// Create inserts a new entity and returns the persisted row.
// Returns domain.ErrAlreadyExists when the app already has an entity with
// the same name.
func (r *Repo) Create(ctx context.Context, e *domain.Entity) (*domain.Entity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Insert("entities").
		Columns("app_id", "name", "display_name", "plural_display_name", "description").
		Values(e.AppID, e.Name, e.DisplayName, e.PluralDisplayName, e.Description).
		Suffix("RETURNING " + entityColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build entity insert: %w", err)
	}

	created, err := scanEntity(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "entity", uuid.Nil)
	}
	return created, nil
}

// Update modifies mutable entity attributes using partial update params.
// Returns domain.ErrNotFound when the entity is absent or soft-deleted.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params domain.EntityUpdateParams) (*domain.Entity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := qb.
		Update("entities").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		Suffix("RETURNING " + entityColumns)

	if params.Name != nil {
		b = b.Set("name", *params.Name)
	}
	if params.DisplayName != nil {
		b = b.Set("display_name", *params.DisplayName)
	}
	if params.PluralDisplayName != nil {
		b = b.Set("plural_display_name", *params.PluralDisplayName)
	}
	if params.Description != nil {
		b = b.Set("description", *params.Description)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build entity update: %w", err)
	}

	updated, err := scanEntity(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "entity", id)
	}
	return updated, nil
}

// SoftDelete marks an entity deleted and renames it to the terminal deleted
// marker, freeing the original name for reuse within the app.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID, deletedName string) (*domain.Entity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Update("entities").
		Set("name", deletedName).
		Set("deleted_at", sq.Expr("now()")).
		Set("locked_by_user_id", nil).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		Suffix("RETURNING " + entityColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build entity soft delete: %w", err)
	}

	deleted, err := scanEntity(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "entity", id)
	}
	return deleted, nil
}

// SetLock writes the edit lock holder. userID nil releases the lock.
func (r *Repo) SetLock(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*domain.Entity, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Update("entities").
		Set("locked_by_user_id", userID).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		Suffix("RETURNING " + entityColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build entity lock update: %w", err)
	}

	locked, err := scanEntity(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "entity", id)
	}
	return locked, nil
}

// HardDeleteOld physically removes entities soft-deleted before the
// threshold. Child rows (fields, versions, permissions) go with them via
// ON DELETE CASCADE. Used by the cleanup command.
func (r *Repo) HardDeleteOld(ctx context.Context, threshold time.Time) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Delete("entities").
		Where(sq.Lt{"deleted_at": threshold}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build entity hard delete: %w", err)
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("hard delete entities: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEntity(row pgx.Row) (*domain.Entity, error) {
	var e domain.Entity
	err := row.Scan(
		&e.ID,
		&e.AppID,
		&e.Name,
		&e.DisplayName,
		&e.PluralDisplayName,
		&e.Description,
		&e.LockedByUserID,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
