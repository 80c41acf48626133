package entity

import (
	"context"
	"fmt"

	"github.com/forgewell/appforge-backend/internal/domain"
)

// Fields resolves an entity's current (version 0) field set. When the parent
// already carries a prefetched set the resolution short-circuits: return if
// non-empty, else fetch.
func (s *Service) Fields(ctx context.Context, parent *domain.Entity, filter domain.FieldFilter) ([]*domain.EntityField, error) {
	if len(parent.Fields) > 0 {
		return parent.Fields, nil
	}
	fields, err := s.fields.ListByEntityID(ctx, parent.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	return fields, nil
}

// Permissions resolves an entity's current entity-level permissions. Always
// fetched fresh, never short-circuited from the parent.
func (s *Service) Permissions(ctx context.Context, parent *domain.Entity) ([]*domain.EntityPermission, error) {
	permissions, err := s.permissions.ListByEntityID(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return permissions, nil
}

// Versions resolves an entity's version history. The caller-supplied filter
// is merged under the implicit entity scope: the effective filter is always
// callerFilter ∧ entityID = parent.ID, so callers cannot widen the scope to
// other entities.
func (s *Service) Versions(ctx context.Context, parent *domain.Entity, filter domain.VersionFilter) ([]*domain.EntityVersion, error) {
	versions, err := s.versions.ListByEntityID(ctx, parent.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// LockedByUser resolves the user currently holding the entity's edit lock.
// Returns nil when the entity is unlocked.
func (s *Service) LockedByUser(ctx context.Context, parent *domain.Entity) (*domain.User, error) {
	if parent.LockedByUserID == nil {
		return nil, nil
	}
	u, err := s.users.Find(ctx, domain.UserFilter{ID: parent.LockedByUserID})
	if err != nil {
		return nil, fmt.Errorf("find locking user: %w", err)
	}
	return u, nil
}

// CreateVersion appends an immutable history snapshot of the entity's working
// draft with the next monotonically increasing version number. Version 0
// itself is never re-created.
func (s *Service) CreateVersion(ctx context.Context, input CreateVersionInput) (*domain.EntityVersion, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var created *domain.EntityVersion
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.entities.GetByID(txCtx, input.EntityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}

		number, err := s.versions.NextVersionNumber(txCtx, e.ID)
		if err != nil {
			return fmt.Errorf("next version number: %w", err)
		}

		created, err = s.versions.Create(txCtx, &domain.EntityVersion{
			EntityID:      e.ID,
			VersionNumber: number,
			Name:          e.Name,
			DisplayName:   e.DisplayName,
			CommitMessage: trimOrNil(input.CommitMessage),
		})
		if err != nil {
			return fmt.Errorf("create version: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}
