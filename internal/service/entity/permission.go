package entity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/domain"
	"github.com/forgewell/appforge-backend/pkg/ctxutil"
)

// UpdatePermission changes how an entity-level permission action is evaluated
// (all roles / granular role set / disabled).
func (s *Service) UpdatePermission(ctx context.Context, input UpdatePermissionInput) (*domain.EntityPermission, error) {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.EntityPermission
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.entities.GetByID(txCtx, input.EntityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}
		if err := guardLock(e, callerID); err != nil {
			return err
		}

		updated, err = s.permissions.UpdateType(txCtx, input.EntityID, input.Action, input.Type)
		if err != nil {
			return fmt.Errorf("update permission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "permission updated",
		slog.String("caller_id", callerID.String()),
		slog.String("entity_id", input.EntityID.String()),
		slog.String("action", input.Action.String()),
		slog.String("type", input.Type.String()),
	)

	return updated, nil
}

// UpdatePermissionRoles applies an add/remove delta to the entity-level role
// set of one permission action.
func (s *Service) UpdatePermissionRoles(ctx context.Context, input UpdatePermissionRolesInput) (*domain.EntityPermission, error) {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.EntityPermission
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.entities.GetByID(txCtx, input.EntityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}
		if err := guardLock(e, callerID); err != nil {
			return err
		}

		updated, err = s.permissions.UpdateRoles(txCtx, input.EntityID, input.Action, input.Delta)
		if err != nil {
			return fmt.Errorf("update permission roles: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "permission roles updated",
		slog.String("caller_id", callerID.String()),
		slog.String("entity_id", input.EntityID.String()),
		slog.String("action", input.Action.String()),
	)

	return updated, nil
}

// AddPermissionField creates a field-granularity override for one permission
// action. The override starts with an empty role set.
func (s *Service) AddPermissionField(ctx context.Context, input PermissionFieldInput) (*domain.EntityPermissionField, error) {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var created *domain.EntityPermissionField
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.entities.GetByID(txCtx, input.EntityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}
		if err := guardLock(e, callerID); err != nil {
			return err
		}

		field, err := s.findFieldByName(txCtx, input.EntityID, input.FieldName)
		if err != nil {
			return err
		}

		created, err = s.permissions.AddField(txCtx, &domain.EntityPermissionField{
			EntityID:  input.EntityID,
			Action:    input.Action,
			FieldID:   field.ID,
			FieldName: field.Name,
		})
		if err != nil {
			return fmt.Errorf("add permission field: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "permission field added",
		slog.String("caller_id", callerID.String()),
		slog.String("entity_id", input.EntityID.String()),
		slog.String("action", input.Action.String()),
		slog.String("field_name", input.FieldName),
	)

	return created, nil
}

// DeletePermissionField removes a field-granularity override, restoring the
// entity-level role set for that field.
func (s *Service) DeletePermissionField(ctx context.Context, input PermissionFieldInput) error {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.entities.GetByID(txCtx, input.EntityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}
		if err := guardLock(e, callerID); err != nil {
			return err
		}

		if err := s.permissions.DeleteField(txCtx, input.EntityID, input.Action, input.FieldName); err != nil {
			return fmt.Errorf("delete permission field: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "permission field deleted",
		slog.String("caller_id", callerID.String()),
		slog.String("entity_id", input.EntityID.String()),
		slog.String("action", input.Action.String()),
		slog.String("field_name", input.FieldName),
	)

	return nil
}

// UpdatePermissionFieldRoles applies an add/remove delta to a
// field-granularity override's role set.
func (s *Service) UpdatePermissionFieldRoles(ctx context.Context, input UpdatePermissionFieldRolesInput) (*domain.EntityPermissionField, error) {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.EntityPermissionField
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		pf, err := s.permissions.GetField(txCtx, input.PermissionFieldID)
		if err != nil {
			return fmt.Errorf("get permission field: %w", err)
		}
		e, err := s.entities.GetByID(txCtx, pf.EntityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}
		if err := guardLock(e, callerID); err != nil {
			return err
		}

		updated, err = s.permissions.UpdateFieldRoles(txCtx, input.PermissionFieldID, input.Delta)
		if err != nil {
			return fmt.Errorf("update permission field roles: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "permission field roles updated",
		slog.String("caller_id", callerID.String()),
		slog.String("permission_field_id", input.PermissionFieldID.String()),
	)

	return updated, nil
}

// findFieldByName locates a field on the entity's working draft by its
// machine name.
func (s *Service) findFieldByName(ctx context.Context, entityID uuid.UUID, name string) (*domain.EntityField, error) {
	fields, err := s.fields.ListByEntityID(ctx, entityID, domain.FieldFilter{Name: &name})
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("field %q: %w", name, domain.ErrNotFound)
	}
	return fields[0], nil
}
