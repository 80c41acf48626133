package entity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/domain"
	"github.com/forgewell/appforge-backend/pkg/ctxutil"
)

// AcquireLock transitions the entity's edit lock to holderID, the caller
// identity the transport resolved and injected into the mutation arguments.
// Unlocked → LockedBy(holder). Re-acquiring a lock the holder already owns
// succeeds and changes nothing. A lock held by another user is never stolen;
// that attempt fails with a conflict.
func (s *Service) AcquireLock(ctx context.Context, entityID, holderID uuid.UUID) (*domain.Entity, error) {
	if holderID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	if entityID == uuid.Nil {
		return nil, domain.NewValidationError("entity_id", "required")
	}

	var locked *domain.Entity
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.entities.GetByID(txCtx, entityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}

		if e.IsLockedBy(holderID) {
			locked = e
			return nil
		}
		if e.IsLocked() {
			return domain.NewConflictError("entity is locked by another user")
		}

		locked, err = s.entities.SetLock(txCtx, entityID, &holderID)
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "entity locked",
		slog.String("holder_id", holderID.String()),
		slog.String("entity_id", entityID.String()),
	)

	return locked, nil
}

// ReleaseLock clears the entity's edit lock. Only the current holder may
// release it; releasing an unlocked entity is a no-op.
func (s *Service) ReleaseLock(ctx context.Context, entityID uuid.UUID) (*domain.Entity, error) {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if entityID == uuid.Nil {
		return nil, domain.NewValidationError("entity_id", "required")
	}

	var released *domain.Entity
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.entities.GetByID(txCtx, entityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}

		if !e.IsLocked() {
			released = e
			return nil
		}
		if !e.IsLockedBy(callerID) {
			return domain.NewConflictError("entity is locked by another user")
		}

		released, err = s.entities.SetLock(txCtx, entityID, nil)
		if err != nil {
			return fmt.Errorf("release lock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "entity unlocked",
		slog.String("caller_id", callerID.String()),
		slog.String("entity_id", entityID.String()),
	)

	return released, nil
}
