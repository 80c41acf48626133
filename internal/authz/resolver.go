package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/argtree"
	"github.com/forgewell/appforge-backend/internal/domain"
)

// Oracle answers whether a caller may perform an action on a resource.
type Oracle interface {
	MayAccess(ctx context.Context, callerID uuid.UUID, kind ResourceKind, resourceID uuid.UUID, action Action) (bool, error)
}

// resourceStore provides the secondary lookups needed to resolve a
// field-scoped resource to its owning entity. Read-only.
type resourceStore interface {
	FieldEntityID(ctx context.Context, fieldID uuid.UUID) (uuid.UUID, error)
	PermissionFieldEntityID(ctx context.Context, permissionFieldID uuid.UUID) (uuid.UUID, error)
}

// Resolver maps an operation's declared Descriptor plus its argument tree to
// a concrete resource identity and asks the Oracle whether the caller may
// proceed. Resolution failure and permission failure both terminate the
// invocation before any mutation logic runs; neither mutates state.
type Resolver struct {
	oracle Oracle
	store  resourceStore
}

// NewResolver creates a Resolver.
func NewResolver(oracle Oracle, store resourceStore) *Resolver {
	return &Resolver{oracle: oracle, store: store}
}

// Authorize resolves the descriptor against args and consults the oracle.
// Returns domain.ErrResolution when the declared path or the referenced
// resource cannot be resolved, domain.ErrForbidden when the oracle denies.
func (r *Resolver) Authorize(ctx context.Context, callerID uuid.UUID, d Descriptor, args *argtree.Node) error {
	rawID, err := ExtractID(args, d.Path)
	if err != nil {
		return fmt.Errorf("authorize %s at %q: %v: %w", d.Kind, d.Path, err, domain.ErrResolution)
	}

	kind, resourceID, err := r.effectiveResource(ctx, d.Kind, rawID)
	if err != nil {
		return err
	}

	allowed, err := r.oracle.MayAccess(ctx, callerID, kind, resourceID, d.Action)
	if err != nil {
		return fmt.Errorf("authorize %s %s: %w", kind, resourceID, err)
	}
	if !allowed {
		return fmt.Errorf("authorize %s %s: %w", kind, resourceID, domain.ErrForbidden)
	}
	return nil
}

// effectiveResource resolves field-scoped kinds to their owning entity. The
// declared path points at a field id, but access is governed at entity
// granularity, so the owning entity id is looked up first.
func (r *Resolver) effectiveResource(ctx context.Context, kind ResourceKind, id uuid.UUID) (ResourceKind, uuid.UUID, error) {
	switch kind {
	case ResourceEntityField:
		entityID, err := r.store.FieldEntityID(ctx, id)
		if err != nil {
			return kind, uuid.Nil, resolutionErr(kind, id, err)
		}
		return ResourceEntity, entityID, nil
	case ResourceEntityPermissionField:
		entityID, err := r.store.PermissionFieldEntityID(ctx, id)
		if err != nil {
			return kind, uuid.Nil, resolutionErr(kind, id, err)
		}
		return ResourceEntity, entityID, nil
	default:
		return kind, id, nil
	}
}

func resolutionErr(kind ResourceKind, id uuid.UUID, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("resolve %s %s: %w", kind, id, domain.ErrResolution)
	}
	return fmt.Errorf("resolve %s %s: %w", kind, id, err)
}

// ExtractID reads the resource id at a dot-separated path. The node at the
// path may be the id string itself, a write-side "connect" reference object
// ({connect: {id}}), or a plain filter object ({id}).
func ExtractID(args *argtree.Node, path string) (uuid.UUID, error) {
	node, err := args.Resolve(path)
	if err != nil {
		return uuid.Nil, err
	}

	if node.Kind() == argtree.KindObject {
		if connect, ok := node.Get("connect"); ok {
			node = connect
		}
		if idNode, ok := node.Get("id"); ok {
			node = idNode
		}
	}

	s, err := node.StringValue()
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse id %q: %w", s, err)
	}
	return id, nil
}
