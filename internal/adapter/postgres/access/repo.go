// Package access backs the authorization resolver with PostgreSQL lookups:
// resource-to-app resolution, workspace membership checks, and the secondary
// field-to-entity lookups. All queries are read-only.
package access

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/forgewell/appforge-backend/internal/adapter/postgres"
	"github.com/forgewell/appforge-backend/internal/authz"
	"github.com/forgewell/appforge-backend/internal/domain"
)

// Repo answers access questions from the app membership tables.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new access repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Membership roles. Every member may view; editors and above may edit;
// deleting schema objects is reserved for owners and admins.
const (
	roleOwner  = "OWNER"
	roleAdmin  = "ADMIN"
	roleEditor = "EDITOR"
	roleViewer = "VIEWER"
)

// MayAccess reports whether the caller's app membership permits the action
// on the resource. Unknown resources fail with domain.ErrResolution.
func (r *Repo) MayAccess(ctx context.Context, callerID uuid.UUID, kind authz.ResourceKind, resourceID uuid.UUID, action authz.Action) (bool, error) {
	appID, err := r.appIDFor(ctx, kind, resourceID)
	if err != nil {
		return false, err
	}

	role, err := r.memberRole(ctx, appID, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return roleAllows(role, action), nil
}

// roleAllows maps a membership role to the actions it permits. Unknown
// role strings are denied every action.
func roleAllows(role string, action authz.Action) bool {
	switch role {
	case roleOwner, roleAdmin:
		return true
	case roleEditor:
		return action != authz.ActionDelete
	case roleViewer:
		return action == authz.ActionView
	default:
		return false
	}
}

// FieldEntityID returns the owning entity of a field.
func (r *Repo) FieldEntityID(ctx context.Context, fieldID uuid.UUID) (uuid.UUID, error) {
	return r.parentID(ctx, "entity_fields", "entity_id", fieldID)
}

// PermissionFieldEntityID returns the owning entity of a permission field
// override.
func (r *Repo) PermissionFieldEntityID(ctx context.Context, permissionFieldID uuid.UUID) (uuid.UUID, error) {
	return r.parentID(ctx, "entity_permission_fields", "entity_id", permissionFieldID)
}

// appIDFor resolves a resource to its owning app. Field-scoped kinds are
// resolved by the authz resolver before reaching here, so only App and
// Entity remain.
func (r *Repo) appIDFor(ctx context.Context, kind authz.ResourceKind, resourceID uuid.UUID) (uuid.UUID, error) {
	switch kind {
	case authz.ResourceApp:
		querier := postgres.QuerierFromCtx(ctx, r.pool)

		query, args, err := qb.
			Select("id").
			From("apps").
			Where(sq.Eq{"id": resourceID}).
			ToSql()
		if err != nil {
			return uuid.Nil, fmt.Errorf("build app query: %w", err)
		}

		var id uuid.UUID
		if err := querier.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return uuid.Nil, fmt.Errorf("app %s: %w", resourceID, domain.ErrResolution)
			}
			return uuid.Nil, fmt.Errorf("app %s: %w", resourceID, err)
		}
		return id, nil

	case authz.ResourceEntity:
		querier := postgres.QuerierFromCtx(ctx, r.pool)

		query, args, err := qb.
			Select("app_id").
			From("entities").
			Where(sq.Eq{"id": resourceID, "deleted_at": nil}).
			ToSql()
		if err != nil {
			return uuid.Nil, fmt.Errorf("build entity app query: %w", err)
		}

		var appID uuid.UUID
		if err := querier.QueryRow(ctx, query, args...).Scan(&appID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return uuid.Nil, fmt.Errorf("entity %s: %w", resourceID, domain.ErrResolution)
			}
			return uuid.Nil, fmt.Errorf("entity %s: %w", resourceID, err)
		}
		return appID, nil

	default:
		return uuid.Nil, fmt.Errorf("resource kind %s: %w", kind, domain.ErrResolution)
	}
}

func (r *Repo) memberRole(ctx context.Context, appID, userID uuid.UUID) (string, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select("role").
		From("app_members").
		Where(sq.Eq{"app_id": appID, "user_id": userID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build membership query: %w", err)
	}

	var role string
	if err := querier.QueryRow(ctx, query, args...).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("member %s of app %s: %w", userID, appID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("member %s of app %s: %w", userID, appID, err)
	}
	return role, nil
}

func (r *Repo) parentID(ctx context.Context, table, column string, id uuid.UUID) (uuid.UUID, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := qb.
		Select(column).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("build %s parent query: %w", table, err)
	}

	var parent uuid.UUID
	if err := querier.QueryRow(ctx, query, args...).Scan(&parent); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("%s %s: %w", table, id, domain.ErrNotFound)
		}
		return uuid.Nil, fmt.Errorf("%s %s: %w", table, id, err)
	}
	return parent, nil
}
