package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity is a schema object owned by an application. Exactly one of its
// versions carries number 0, the live working draft; all other version
// numbers form an immutable, monotonically increasing history.
type Entity struct {
	ID                uuid.UUID
	AppID             uuid.UUID
	Name              string
	DisplayName       string
	PluralDisplayName string
	Description       *string
	LockedByUserID    *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time

	// Fields optionally carries the entity's current (version 0) field set
	// when the caller chose to prefetch it. Derived-field resolution returns
	// this set as-is when non-empty instead of fetching.
	Fields []*EntityField
}

// IsLocked reports whether any user currently holds the edit lock.
func (e *Entity) IsLocked() bool { return e.LockedByUserID != nil }

// IsLockedBy reports whether the given user holds the edit lock.
func (e *Entity) IsLockedBy(userID uuid.UUID) bool {
	return e.LockedByUserID != nil && *e.LockedByUserID == userID
}

// EntityUpdateParams are the mutable entity attributes. Nil means unchanged.
type EntityUpdateParams struct {
	Name              *string
	DisplayName       *string
	PluralDisplayName *string
	Description       *string
}
