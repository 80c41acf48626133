// Package field implements the EntityField repository using PostgreSQL.
// Fields belong to the entity's current (version 0) draft; the properties
// payload is stored as jsonb.
package field

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

// FieldWithEntityID is the batch result type for ListByEntityIDs.
// It embeds domain.EntityField for grouping by the caller.
type FieldWithEntityID struct {
	EntityID uuid.UUID
	domain.EntityField
}

// Repo provides entity field persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new field repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const fieldColumns = `id, entity_id, name, display_name, data_type, properties,
required, searchable, description, position, created_at, updated_at`

// GetByID returns a field by primary key.
// Returns domain.ErrNotFound when absent.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.EntityField, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select(fieldColumns).
		From("entity_fields").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build field query: %w", err)
	}

	f, err := scanField(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "field", id)
	}
	return f, nil
}

// ListByEntityID returns an entity's fields matching the filter, ordered by
// position. Returns an empty slice (not nil) when nothing matches.
func (r *Repo) ListByEntityID(ctx context.Context, entityID uuid.UUID, filter domain.FieldFilter) ([]*domain.EntityField, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := qb.
		Select(fieldColumns).
		From("entity_fields").
		Where(sq.Eq{"entity_id": entityID}).
		OrderBy("position", "id")

	if filter.Name != nil {
		b = b.Where(sq.Eq{"name": *filter.Name})
	}
	if filter.DataType != nil {
		b = b.Where(sq.Eq{"data_type": filter.DataType.String()})
	}
	if filter.Searchable != nil {
		b = b.Where(sq.Eq{"searchable": *filter.Searchable})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build field list query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	defer rows.Close()

	fields := []*domain.EntityField{}
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("list fields: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	return fields, nil
}

// ListByEntityIDs returns fields for multiple entities (batch for DataLoader).
// Results include EntityID for grouping by the caller.
func (r *Repo) ListByEntityIDs(ctx context.Context, entityIDs []uuid.UUID) ([]FieldWithEntityID, error) {
	if len(entityIDs) == 0 {
		return []FieldWithEntityID{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select(fieldColumns).
		From("entity_fields").
		Where(sq.Eq{"entity_id": entityIDs}).
		OrderBy("entity_id", "position", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build field batch query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fields by entity_ids: %w", err)
	}
	defer rows.Close()

	result := []FieldWithEntityID{}
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("list fields by entity_ids: %w", err)
		}
		result = append(result, FieldWithEntityID{EntityID: f.EntityID, EntityField: *f})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fields by entity_ids: %w", err)
	}

	return result, nil
}

// Create inserts a new field and returns the persisted row.
// Returns domain.ErrAlreadyExists when the entity already has a field with
// the same name.
func (r *Repo) Create(ctx context.Context, f *domain.EntityField) (*domain.EntityField, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Insert("entity_fields").
		Columns("entity_id", "name", "display_name", "data_type", "properties",
			"required", "searchable", "description", "position").
		Values(f.EntityID, f.Name, f.DisplayName, f.DataType.String(), f.Properties,
			f.Required, f.Searchable, f.Description, f.Position).
		Suffix("RETURNING " + fieldColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build field insert: %w", err)
	}

	created, err := scanField(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "field", uuid.Nil)
	}
	return created, nil
}

// Update modifies mutable field attributes using partial update params.
// Returns domain.ErrNotFound when the field is absent.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params domain.EntityFieldUpdateParams) (*domain.EntityField, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := qb.
		Update("entity_fields").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + fieldColumns)

	if params.Name != nil {
		b = b.Set("name", *params.Name)
	}
	if params.DisplayName != nil {
		b = b.Set("display_name", *params.DisplayName)
	}
	if params.DataType != nil {
		b = b.Set("data_type", params.DataType.String())
	}
	if params.Properties != nil {
		b = b.Set("properties", params.Properties)
	}
	if params.Required != nil {
		b = b.Set("required", *params.Required)
	}
	if params.Searchable != nil {
		b = b.Set("searchable", *params.Searchable)
	}
	if params.Description != nil {
		b = b.Set("description", *params.Description)
	}
	if params.Position != nil {
		b = b.Set("position", *params.Position)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build field update: %w", err)
	}

	updated, err := scanField(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "field", id)
	}
	return updated, nil
}

// Delete permanently removes a field.
// Returns domain.ErrNotFound when the field is absent.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Delete("entity_fields").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build field delete: %w", err)
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "field", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("field %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// NextPosition returns the next free position on the entity's draft, which
// doubles as the current field count for the size cap.
func (r *Repo) NextPosition(ctx context.Context, entityID uuid.UUID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select("COALESCE(MAX(position) + 1, 0)").
		From("entity_fields").
		Where(sq.Eq{"entity_id": entityID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build next position query: %w", err)
	}

	var position int
	if err := querier.QueryRow(ctx, query, args...).Scan(&position); err != nil {
		return 0, fmt.Errorf("next field position: %w", err)
	}
	return position, nil
}

func scanField(row pgx.Row) (*domain.EntityField, error) {
	var (
		f        domain.EntityField
		dataType string
	)
	err := row.Scan(
		&f.ID,
		&f.EntityID,
		&f.Name,
		&f.DisplayName,
		&dataType,
		&f.Properties,
		&f.Required,
		&f.Searchable,
		&f.Description,
		&f.Position,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.DataType = domain.DataType(dataType)
	return &f, nil
}
