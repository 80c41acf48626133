// Package authz implements the cross-cutting authorization mechanics composed
// around operation handlers: declarative resource descriptors, path-based
// resolution of the concrete resource id from the argument tree, and
// context-derived value injection into the same tree.
package authz

// ResourceKind identifies which class of resource an authorization check
// targets.
type ResourceKind string

const (
	ResourceApp                   ResourceKind = "APP"
	ResourceEntity                ResourceKind = "ENTITY"
	ResourceEntityField           ResourceKind = "ENTITY_FIELD"
	ResourceEntityPermissionField ResourceKind = "ENTITY_PERMISSION_FIELD"
)

func (k ResourceKind) String() string { return string(k) }

func (k ResourceKind) IsValid() bool {
	switch k {
	case ResourceApp, ResourceEntity, ResourceEntityField, ResourceEntityPermissionField:
		return true
	}
	return false
}

// Action is the access class an operation requires on its resource.
type Action string

const (
	ActionView   Action = "VIEW"
	ActionEdit   Action = "EDIT"
	ActionDelete Action = "DELETE"
)

func (a Action) String() string { return string(a) }

// Descriptor declares, per operation, where in the argument tree the concrete
// resource identifier lives and what kind of resource it names. It is
// resolved once per invocation, before the operation body runs.
type Descriptor struct {
	Kind ResourceKind
	// Path is a dot-separated path into the argument tree. The node at the
	// path may be the id itself or a nested reference object; see ExtractID.
	Path string
	// Action the caller must be allowed to perform on the resolved resource.
	Action Action
}

// InjectableValue identifies a context-derived value written into the
// argument tree before dispatch.
type InjectableValue string

// InjectCallerID injects the caller's user id.
const InjectCallerID InjectableValue = "CALLER_ID"

// Injection declares, per operation, a context-derived value and the argument
// tree path it is written to. Injection runs before authorization resolution,
// so injected values are themselves eligible to participate in it.
type Injection struct {
	Value InjectableValue
	Path  string
}
