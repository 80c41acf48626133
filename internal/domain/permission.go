package domain

import "github.com/google/uuid"

// EntityPermission is the entity-granularity role set for one permission
// action. One permission exists per (entity, action) pair.
type EntityPermission struct {
	ID       uuid.UUID
	EntityID uuid.UUID
	Action   PermissionAction
	Type     PermissionType
	RoleIDs  []uuid.UUID

	// Fields optionally carries the field-granularity overrides for this
	// (entity, action) pair when the caller chose to prefetch them.
	Fields []*EntityPermissionField
}

// EntityPermissionField overrides the entity-level role set for one field
// under one permission action.
type EntityPermissionField struct {
	ID        uuid.UUID
	EntityID  uuid.UUID
	Action    PermissionAction
	FieldID   uuid.UUID
	FieldName string
	RoleIDs   []uuid.UUID
}

// PermissionRolesDelta describes an add/remove change to a role set.
type PermissionRolesDelta struct {
	AddRoleIDs    []uuid.UUID
	RemoveRoleIDs []uuid.UUID
}

// IsEmpty reports whether the delta changes nothing.
func (d PermissionRolesDelta) IsEmpty() bool {
	return len(d.AddRoleIDs) == 0 && len(d.RemoveRoleIDs) == 0
}
