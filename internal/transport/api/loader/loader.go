// Package loader provides per-request DataLoaders for batching derived-field
// reads into single SQL calls. Loaders call repositories directly, bypassing
// the service layer; they only serve reads that authorization has already
// cleared at the parent entity.
package loader

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"

	"github.com/forgewell/appforge-backend/internal/adapter/postgres/field"
	"github.com/forgewell/appforge-backend/internal/domain"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

// ---------------------------------------------------------------------------
// Repository interfaces (consumer-defined)
// ---------------------------------------------------------------------------

type fieldRepo interface {
	ListByEntityIDs(ctx context.Context, entityIDs []uuid.UUID) ([]field.FieldWithEntityID, error)
}

type permissionRepo interface {
	ListByEntityIDs(ctx context.Context, entityIDs []uuid.UUID) ([]*domain.EntityPermission, error)
}

type userRepo interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error)
}

// Repos holds all repositories required by DataLoaders.
type Repos struct {
	Field      fieldRepo
	Permission permissionRepo
	User       userRepo
}

// Loaders contains all per-request DataLoader instances.
type Loaders struct {
	FieldsByEntityID      *dataloader.Loader[uuid.UUID, []*domain.EntityField]
	PermissionsByEntityID *dataloader.Loader[uuid.UUID, []*domain.EntityPermission]
	UserByID              *dataloader.Loader[uuid.UUID, *domain.User]
}

// NewLoaders creates a new set of DataLoaders backed by the given repositories.
// Must be called per-request (loaders cache results within a single request).
func NewLoaders(repos *Repos) *Loaders {
	return &Loaders{
		FieldsByEntityID:      newLoader(newFieldsBatchFn(repos.Field)),
		PermissionsByEntityID: newLoader(newPermissionsBatchFn(repos.Permission)),
		UserByID:              newLoader(newUserBatchFn(repos.User)),
	}
}

// newLoader creates a dataloader.Loader with standard batch parameters.
func newLoader[V any](batchFn dataloader.BatchFunc[uuid.UUID, V]) *dataloader.Loader[uuid.UUID, V] {
	return dataloader.NewBatchedLoader(
		batchFn,
		dataloader.WithWait[uuid.UUID, V](wait),
		dataloader.WithBatchCapacity[uuid.UUID, V](maxBatch),
	)
}

// ---------------------------------------------------------------------------
// Batch functions
// ---------------------------------------------------------------------------

func newFieldsBatchFn(repo fieldRepo) dataloader.BatchFunc[uuid.UUID, []*domain.EntityField] {
	return func(ctx context.Context, entityIDs []uuid.UUID) []*dataloader.Result[[]*domain.EntityField] {
		rows, err := repo.ListByEntityIDs(ctx, entityIDs)
		if err != nil {
			return errorResults[[]*domain.EntityField](len(entityIDs), err)
		}

		grouped := make(map[uuid.UUID][]*domain.EntityField, len(entityIDs))
		for i := range rows {
			f := rows[i].EntityField
			grouped[rows[i].EntityID] = append(grouped[rows[i].EntityID], &f)
		}

		results := make([]*dataloader.Result[[]*domain.EntityField], len(entityIDs))
		for i, id := range entityIDs {
			fields := grouped[id]
			if fields == nil {
				fields = []*domain.EntityField{}
			}
			results[i] = &dataloader.Result[[]*domain.EntityField]{Data: fields}
		}
		return results
	}
}

func newPermissionsBatchFn(repo permissionRepo) dataloader.BatchFunc[uuid.UUID, []*domain.EntityPermission] {
	return func(ctx context.Context, entityIDs []uuid.UUID) []*dataloader.Result[[]*domain.EntityPermission] {
		rows, err := repo.ListByEntityIDs(ctx, entityIDs)
		if err != nil {
			return errorResults[[]*domain.EntityPermission](len(entityIDs), err)
		}

		grouped := make(map[uuid.UUID][]*domain.EntityPermission, len(entityIDs))
		for _, p := range rows {
			grouped[p.EntityID] = append(grouped[p.EntityID], p)
		}

		results := make([]*dataloader.Result[[]*domain.EntityPermission], len(entityIDs))
		for i, id := range entityIDs {
			permissions := grouped[id]
			if permissions == nil {
				permissions = []*domain.EntityPermission{}
			}
			results[i] = &dataloader.Result[[]*domain.EntityPermission]{Data: permissions}
		}
		return results
	}
}

func newUserBatchFn(repo userRepo) dataloader.BatchFunc[uuid.UUID, *domain.User] {
	return func(ctx context.Context, ids []uuid.UUID) []*dataloader.Result[*domain.User] {
		users, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			return errorResults[*domain.User](len(ids), err)
		}

		byID := make(map[uuid.UUID]*domain.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}

		results := make([]*dataloader.Result[*domain.User], len(ids))
		for i, id := range ids {
			results[i] = &dataloader.Result[*domain.User]{Data: byID[id]}
		}
		return results
	}
}

func errorResults[V any](n int, err error) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], n)
	for i := range results {
		results[i] = &dataloader.Result[V]{Error: err}
	}
	return results
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type contextKey string

const loadersKey contextKey = "dataloaders"

// WithLoaders stores Loaders in the context.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, l)
}

// FromContext retrieves Loaders from the context.
// Returns nil when loaders are not present.
func FromContext(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}
