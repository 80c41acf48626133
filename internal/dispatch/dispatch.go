// Package dispatch is the operation surface: a registry of named operations,
// each composed of an optional context-value injection, an optional
// authorization descriptor, and a handler. Dispatch order is fixed:
// inject → authorize → handler, so injected values participate in
// authorization-path resolution and no handler body runs unauthorized.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/argtree"
	"github.com/forgewell/appforge-backend/internal/authz"
	"github.com/forgewell/appforge-backend/internal/domain"
	"github.com/forgewell/appforge-backend/pkg/ctxutil"
)

// Handler executes one operation over its argument tree.
type Handler func(ctx context.Context, args *argtree.Node) (any, error)

// Operation couples a handler with its cross-cutting declarations.
type Operation struct {
	Name      string
	Inject    *authz.Injection
	Authorize *authz.Descriptor
	Handler   Handler
}

// authorizer is what the registry needs from the authorization resolver.
type authorizer interface {
	Authorize(ctx context.Context, callerID uuid.UUID, d authz.Descriptor, args *argtree.Node) error
}

// Registry dispatches named operations.
type Registry struct {
	ops  map[string]Operation
	auth authorizer
	log  *slog.Logger
}

// NewRegistry creates an empty operation registry.
func NewRegistry(log *slog.Logger, auth authorizer) *Registry {
	return &Registry{
		ops:  make(map[string]Operation),
		auth: auth,
		log:  log.With("component", "dispatch"),
	}
}

// Register adds an operation. Panics on a duplicate or nameless operation;
// registration happens once at startup and a collision is a programming error.
func (r *Registry) Register(op Operation) {
	if op.Name == "" || op.Handler == nil {
		panic("dispatch: operation needs a name and a handler")
	}
	if _, exists := r.ops[op.Name]; exists {
		panic(fmt.Sprintf("dispatch: duplicate operation %q", op.Name))
	}
	r.ops[op.Name] = op
}

// Operations returns the registered operation names.
func (r *Registry) Operations() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	return names
}

// Dispatch runs the named operation against the argument tree. Injection and
// authorization failures are terminal for the invocation and occur before the
// handler, and therefore before any state-changing call.
func (r *Registry) Dispatch(ctx context.Context, name string, args *argtree.Node) (any, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, fmt.Errorf("operation %q: %w", name, domain.ErrNotFound)
	}
	if args == nil {
		args = argtree.Object(nil)
	}

	if op.Inject != nil || op.Authorize != nil {
		callerID, ok := ctxutil.UserIDFromCtx(ctx)
		if !ok {
			return nil, fmt.Errorf("operation %q: %w", name, domain.ErrUnauthorized)
		}

		if op.Inject != nil {
			if err := authz.Inject(args, *op.Inject, callerID); err != nil {
				return nil, fmt.Errorf("operation %q: %w", name, err)
			}
		}
		if op.Authorize != nil {
			if err := r.auth.Authorize(ctx, callerID, *op.Authorize, args); err != nil {
				r.log.WarnContext(ctx, "operation denied",
					slog.String("operation", name),
					slog.String("caller_id", callerID.String()),
					slog.String("reason", err.Error()),
				)
				return nil, fmt.Errorf("operation %q: %w", name, err)
			}
		}
	}

	return op.Handler(ctx, args)
}
