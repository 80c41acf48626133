// Package entity implements the entity schema operations: entity CRUD, the
// single-holder edit lock, typed field management with lookup-relation
// invariants, the two-level permission model, and the immutable version
// history.
package entity

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/domain"
)

type entityRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Entity, error)
	List(ctx context.Context, filter domain.EntityFilter) ([]*domain.Entity, error)
	Create(ctx context.Context, e *domain.Entity) (*domain.Entity, error)
	Update(ctx context.Context, id uuid.UUID, params domain.EntityUpdateParams) (*domain.Entity, error)
	SoftDelete(ctx context.Context, id uuid.UUID, deletedName string) (*domain.Entity, error)
	SetLock(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*domain.Entity, error)
}

type fieldRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EntityField, error)
	ListByEntityID(ctx context.Context, entityID uuid.UUID, filter domain.FieldFilter) ([]*domain.EntityField, error)
	Create(ctx context.Context, f *domain.EntityField) (*domain.EntityField, error)
	Update(ctx context.Context, id uuid.UUID, params domain.EntityFieldUpdateParams) (*domain.EntityField, error)
	Delete(ctx context.Context, id uuid.UUID) error
	NextPosition(ctx context.Context, entityID uuid.UUID) (int, error)
}

type versionRepo interface {
	ListByEntityID(ctx context.Context, entityID uuid.UUID, filter domain.VersionFilter) ([]*domain.EntityVersion, error)
	Create(ctx context.Context, v *domain.EntityVersion) (*domain.EntityVersion, error)
	NextVersionNumber(ctx context.Context, entityID uuid.UUID) (int, error)
}

type permissionRepo interface {
	ListByEntityID(ctx context.Context, entityID uuid.UUID) ([]*domain.EntityPermission, error)
	Get(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction) (*domain.EntityPermission, error)
	CreateDefaults(ctx context.Context, entityID uuid.UUID) error
	UpdateType(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction, t domain.PermissionType) (*domain.EntityPermission, error)
	UpdateRoles(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction, delta domain.PermissionRolesDelta) (*domain.EntityPermission, error)
	GetField(ctx context.Context, permissionFieldID uuid.UUID) (*domain.EntityPermissionField, error)
	AddField(ctx context.Context, pf *domain.EntityPermissionField) (*domain.EntityPermissionField, error)
	DeleteField(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction, fieldName string) error
	UpdateFieldRoles(ctx context.Context, permissionFieldID uuid.UUID, delta domain.PermissionRolesDelta) (*domain.EntityPermissionField, error)
}

type userFinder interface {
	Find(ctx context.Context, filter domain.UserFilter) (*domain.User, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	MaxFieldsPerEntity = 200
)

// Service provides entity schema operations.
type Service struct {
	entities    entityRepo
	fields      fieldRepo
	versions    versionRepo
	permissions permissionRepo
	users       userFinder
	tx          txManager
	log         *slog.Logger
}

// NewService creates a new Entity service.
func NewService(
	log *slog.Logger,
	entities entityRepo,
	fields fieldRepo,
	versions versionRepo,
	permissions permissionRepo,
	users userFinder,
	tx txManager,
) *Service {
	return &Service{
		entities:    entities,
		fields:      fields,
		versions:    versions,
		permissions: permissions,
		users:       users,
		tx:          tx,
		log:         log.With("service", "entity"),
	}
}

// guardLock fails with a conflict when another user holds the entity's edit
// lock. Structural mutations require the lock to be free or held by the caller.
func guardLock(e *domain.Entity, callerID uuid.UUID) error {
	if e.IsLocked() && !e.IsLockedBy(callerID) {
		return domain.NewConflictError("entity is locked by another user")
	}
	return nil
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }

// trimOrNil trims whitespace. Returns nil if result is empty.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
