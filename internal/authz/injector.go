package authz

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/argtree"
)

// Inject writes the declared context-derived value into the argument tree at
// the injection path, creating intermediate containers as needed. It performs
// a single write per invocation and must run before authorization resolution
// reads the same tree.
func Inject(args *argtree.Node, inj Injection, callerID uuid.UUID) error {
	switch inj.Value {
	case InjectCallerID:
		if err := args.Set(inj.Path, argtree.String(callerID.String())); err != nil {
			return fmt.Errorf("inject caller id at %q: %w", inj.Path, err)
		}
		return nil
	default:
		return fmt.Errorf("inject: unknown value kind %q", inj.Value)
	}
}
