// Package permission implements the EntityPermission repository using
// PostgreSQL. One row exists per (entity, action) pair with the role set
// stored as a uuid array; field-granularity overrides live in a child table.
package permission

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

// Repo provides permission persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new permission repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const permissionColumns = `id, entity_id, action, type, role_ids`

const permissionFieldColumns = `id, entity_id, action, field_id, field_name, role_ids`

// defaultActions are the permission rows created for every new entity.
var defaultActions = []domain.PermissionAction{
	domain.PermissionActionView,
	domain.PermissionActionCreate,
	domain.PermissionActionUpdate,
	domain.PermissionActionDelete,
	domain.PermissionActionSearch,
}

// ListByEntityID returns all permissions of an entity with their
// field-granularity overrides populated, ordered by action.
func (r *Repo) ListByEntityID(ctx context.Context, entityID uuid.UUID) ([]*domain.EntityPermission, error) {
	permissions, err := r.listPermissions(ctx, []uuid.UUID{entityID})
	if err != nil {
		return nil, err
	}

	fields, err := r.listPermissionFields(ctx, []uuid.UUID{entityID})
	if err != nil {
		return nil, err
	}
	attachFields(permissions, fields)

	return permissions, nil
}

// ListByEntityIDs returns permissions for multiple entities (batch for
// DataLoader), with field overrides populated. Results carry EntityID for
// grouping by the caller.
func (r *Repo) ListByEntityIDs(ctx context.Context, entityIDs []uuid.UUID) ([]*domain.EntityPermission, error) {
	if len(entityIDs) == 0 {
		return []*domain.EntityPermission{}, nil
	}

	permissions, err := r.listPermissions(ctx, entityIDs)
	if err != nil {
		return nil, err
	}

	fields, err := r.listPermissionFields(ctx, entityIDs)
	if err != nil {
		return nil, err
	}
	attachFields(permissions, fields)

	return permissions, nil
}

// Get returns the permission for one (entity, action) pair with field
// overrides populated. Returns domain.ErrNotFound when absent.
func (r *Repo) Get(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction) (*domain.EntityPermission, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select(permissionColumns).
		From("entity_permissions").
		Where(sq.Eq{"entity_id": entityID, "action": action.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permission query: %w", err)
	}

	p, err := scanPermission(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "permission", entityID)
	}

	fields, err := r.listPermissionFields(ctx, []uuid.UUID{entityID})
	if err != nil {
		return nil, err
	}
	attachFields([]*domain.EntityPermission{p}, fields)

	return p, nil
}

// CreateDefaults inserts the permission rows for a new entity: one per
// action, type ALL_ROLES, empty role set.
func (r *Repo) CreateDefaults(ctx context.Context, entityID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := qb.
		Insert("entity_permissions").
		Columns("entity_id", "action", "type", "role_ids")
	for _, action := range defaultActions {
		b = b.Values(entityID, action.String(), domain.PermissionTypeAllRoles.String(), []uuid.UUID{})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build default permissions insert: %w", err)
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "permission", entityID)
	}
	return nil
}

// UpdateType sets the permission type for one (entity, action) pair.
// Returns domain.ErrNotFound when absent.
func (r *Repo) UpdateType(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction, t domain.PermissionType) (*domain.EntityPermission, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Update("entity_permissions").
		Set("type", t.String()).
		Where(sq.Eq{"entity_id": entityID, "action": action.String()}).
		Suffix("RETURNING " + permissionColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permission type update: %w", err)
	}

	updated, err := scanPermission(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "permission", entityID)
	}
	return updated, nil
}

// UpdateRoles applies an add/remove delta to the entity-level role set of one
// (entity, action) pair. Read-modify-write; callers run it inside a tx.
func (r *Repo) UpdateRoles(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction, delta domain.PermissionRolesDelta) (*domain.EntityPermission, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select(permissionColumns).
		From("entity_permissions").
		Where(sq.Eq{"entity_id": entityID, "action": action.String()}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permission roles query: %w", err)
	}

	current, err := scanPermission(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "permission", entityID)
	}

	roleIDs := applyDelta(current.RoleIDs, delta)

	query, args, err = qb.
		Update("entity_permissions").
		Set("role_ids", roleIDs).
		Where(sq.Eq{"id": current.ID}).
		Suffix("RETURNING " + permissionColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permission roles update: %w", err)
	}

	updated, err := scanPermission(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "permission", entityID)
	}
	return updated, nil
}

// GetField returns a field-granularity override by primary key.
// Returns domain.ErrNotFound when absent.
func (r *Repo) GetField(ctx context.Context, permissionFieldID uuid.UUID) (*domain.EntityPermissionField, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select(permissionFieldColumns).
		From("entity_permission_fields").
		Where(sq.Eq{"id": permissionFieldID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permission field query: %w", err)
	}

	pf, err := scanPermissionField(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "permission field", permissionFieldID)
	}
	return pf, nil
}

// AddField inserts a field-granularity override.
// Returns domain.ErrAlreadyExists when the (entity, action, field) override
// already exists.
func (r *Repo) AddField(ctx context.Context, pf *domain.EntityPermissionField) (*domain.EntityPermissionField, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	roleIDs := pf.RoleIDs
	if roleIDs == nil {
		roleIDs = []uuid.UUID{}
	}

	query, args, err := qb.
		Insert("entity_permission_fields").
		Columns("entity_id", "action", "field_id", "field_name", "role_ids").
		Values(pf.EntityID, pf.Action.String(), pf.FieldID, pf.FieldName, roleIDs).
		Suffix("RETURNING " + permissionFieldColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permission field insert: %w", err)
	}

	created, err := scanPermissionField(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "permission field", pf.FieldID)
	}
	return created, nil
}

// DeleteField removes the override identified by (entity, action, field name).
// Returns domain.ErrNotFound when absent.
func (r *Repo) DeleteField(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction, fieldName string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Delete("entity_permission_fields").
		Where(sq.Eq{"entity_id": entityID, "action": action.String(), "field_name": fieldName}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build permission field delete: %w", err)
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "permission field", entityID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("permission field %q on entity %s: %w", fieldName, entityID, domain.ErrNotFound)
	}
	return nil
}

// UpdateFieldRoles applies an add/remove delta to one override's role set.
// Read-modify-write; callers run it inside a tx.
func (r *Repo) UpdateFieldRoles(ctx context.Context, permissionFieldID uuid.UUID, delta domain.PermissionRolesDelta) (*domain.EntityPermissionField, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select(permissionFieldColumns).
		From("entity_permission_fields").
		Where(sq.Eq{"id": permissionFieldID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permission field roles query: %w", err)
	}

	current, err := scanPermissionField(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "permission field", permissionFieldID)
	}

	roleIDs := applyDelta(current.RoleIDs, delta)

	query, args, err = qb.
		Update("entity_permission_fields").
		Set("role_ids", roleIDs).
		Where(sq.Eq{"id": permissionFieldID}).
		Suffix("RETURNING " + permissionFieldColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permission field roles update: %w", err)
	}

	updated, err := scanPermissionField(querier.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "permission field", permissionFieldID)
	}
	return updated, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (r *Repo) listPermissions(ctx context.Context, entityIDs []uuid.UUID) ([]*domain.EntityPermission, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select(permissionColumns).
		From("entity_permissions").
		Where(sq.Eq{"entity_id": entityIDs}).
		OrderBy("entity_id", "action").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permission list query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	permissions := []*domain.EntityPermission{}
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("list permissions: %w", err)
		}
		permissions = append(permissions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}

	return permissions, nil
}

func (r *Repo) listPermissionFields(ctx context.Context, entityIDs []uuid.UUID) ([]*domain.EntityPermissionField, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select(permissionFieldColumns).
		From("entity_permission_fields").
		Where(sq.Eq{"entity_id": entityIDs}).
		OrderBy("entity_id", "action", "field_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permission field list query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list permission fields: %w", err)
	}
	defer rows.Close()

	fields := []*domain.EntityPermissionField{}
	for rows.Next() {
		pf, err := scanPermissionField(rows)
		if err != nil {
			return nil, fmt.Errorf("list permission fields: %w", err)
		}
		fields = append(fields, pf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list permission fields: %w", err)
	}

	return fields, nil
}

// attachFields groups overrides under their (entity, action) permission.
func attachFields(permissions []*domain.EntityPermission, fields []*domain.EntityPermissionField) {
	type key struct {
		entityID uuid.UUID
		action   domain.PermissionAction
	}
	byKey := make(map[key]*domain.EntityPermission, len(permissions))
	for _, p := range permissions {
		p.Fields = []*domain.EntityPermissionField{}
		byKey[key{p.EntityID, p.Action}] = p
	}
	for _, pf := range fields {
		if p, ok := byKey[key{pf.EntityID, pf.Action}]; ok {
			p.Fields = append(p.Fields, pf)
		}
	}
}

// applyDelta removes then adds, deduplicating while preserving order.
func applyDelta(current []uuid.UUID, delta domain.PermissionRolesDelta) []uuid.UUID {
	removed := make(map[uuid.UUID]bool, len(delta.RemoveRoleIDs))
	for _, id := range delta.RemoveRoleIDs {
		removed[id] = true
	}

	result := make([]uuid.UUID, 0, len(current)+len(delta.AddRoleIDs))
	seen := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		if removed[id] || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	for _, id := range delta.AddRoleIDs {
		if removed[id] || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

func scanPermission(row pgx.Row) (*domain.EntityPermission, error) {
	var (
		p      domain.EntityPermission
		action string
		ptype  string
	)
	err := row.Scan(&p.ID, &p.EntityID, &action, &ptype, &p.RoleIDs)
	if err != nil {
		return nil, err
	}
	p.Action = domain.PermissionAction(action)
	p.Type = domain.PermissionType(ptype)
	return &p, nil
}

func scanPermissionField(row pgx.Row) (*domain.EntityPermissionField, error) {
	var (
		pf     domain.EntityPermissionField
		action string
	)
	err := row.Scan(&pf.ID, &pf.EntityID, &action, &pf.FieldID, &pf.FieldName, &pf.RoleIDs)
	if err != nil {
		return nil, err
	}
	pf.Action = domain.PermissionAction(action)
	return &pf, nil
}
