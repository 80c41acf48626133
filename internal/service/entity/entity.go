package entity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/domain"
	"github.com/forgewell/appforge-backend/pkg/ctxutil"
)

// Get returns one entity by id. Returns nil (not an error) when the entity
// does not exist; reads surface absence as an empty result.
func (s *Service) Get(ctx context.Context, entityID uuid.UUID) (*domain.Entity, error) {
	if entityID == uuid.Nil {
		return nil, domain.NewValidationError("entity_id", "required")
	}

	e, err := s.entities.GetByID(ctx, entityID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get entity: %w", err)
	}
	return e, nil
}

// List returns entities matching the filter.
func (s *Service) List(ctx context.Context, filter domain.EntityFilter) ([]*domain.Entity, error) {
	entities, err := s.entities.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	return entities, nil
}

// Create creates an entity together with its version-0 working draft and the
// default permission set, atomically.
func (s *Service) Create(ctx context.Context, input CreateEntityInput) (*domain.Entity, error) {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Entity
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.entities.Create(txCtx, &domain.Entity{
			AppID:             input.AppID,
			Name:              strings.TrimSpace(input.Name),
			DisplayName:       strings.TrimSpace(input.DisplayName),
			PluralDisplayName: strings.TrimSpace(input.PluralDisplayName),
			Description:       trimOrNil(input.Description),
		})
		if createErr != nil {
			return fmt.Errorf("create entity: %w", createErr)
		}

		if _, err := s.versions.Create(txCtx, &domain.EntityVersion{
			EntityID:      created.ID,
			VersionNumber: domain.CurrentVersionNumber,
			Name:          created.Name,
			DisplayName:   created.DisplayName,
		}); err != nil {
			return fmt.Errorf("create draft version: %w", err)
		}

		if err := s.permissions.CreateDefaults(txCtx, created.ID); err != nil {
			return fmt.Errorf("create default permissions: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "entity created",
		slog.String("caller_id", callerID.String()),
		slog.String("entity_id", created.ID.String()),
		slog.String("name", created.Name),
	)

	return created, nil
}

// Update changes an entity's mutable attributes. Requires the edit lock to be
// free or held by the caller.
func (s *Service) Update(ctx context.Context, input UpdateEntityInput) (*domain.Entity, error) {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Entity
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.entities.GetByID(txCtx, input.EntityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}
		if err := guardLock(e, callerID); err != nil {
			return err
		}

		updated, err = s.entities.Update(txCtx, input.EntityID, input.Params)
		if err != nil {
			return fmt.Errorf("update entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "entity updated",
		slog.String("caller_id", callerID.String()),
		slog.String("entity_id", input.EntityID.String()),
	)

	return updated, nil
}

// Delete soft-deletes an entity: the row gains a terminal deleted marker and
// the name is suffixed with the deletion timestamp so it becomes reusable.
// Data is never erased.
func (s *Service) Delete(ctx context.Context, entityID uuid.UUID) (*domain.Entity, error) {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if entityID == uuid.Nil {
		return nil, domain.NewValidationError("entity_id", "required")
	}

	var deleted *domain.Entity
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.entities.GetByID(txCtx, entityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}
		if err := guardLock(e, callerID); err != nil {
			return err
		}

		deletedName := fmt.Sprintf("%s__deleted_%d", e.Name, time.Now().Unix())
		deleted, err = s.entities.SoftDelete(txCtx, entityID, deletedName)
		if err != nil {
			return fmt.Errorf("delete entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "entity deleted",
		slog.String("caller_id", callerID.String()),
		slog.String("entity_id", entityID.String()),
	)

	return deleted, nil
}
