package domain

import "github.com/google/uuid"

// EntityFilter narrows entity list queries. Nil members are ignored.
type EntityFilter struct {
	AppID *uuid.UUID
	// Name performs a case-insensitive contains match.
	Name *string
	// IncludeDeleted also returns soft-deleted entities.
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// FieldFilter narrows field list queries within one entity. Nil members are
// ignored.
type FieldFilter struct {
	Name       *string
	DataType   *DataType
	Searchable *bool
}

// VersionFilter narrows version history queries. The entity scope is NOT part
// of the caller-supplied filter: storage always ANDs the parent entity id so
// callers cannot widen the scope to other entities.
type VersionFilter struct {
	// VersionNumber matches one exact snapshot.
	VersionNumber *int
	// MinVersionNumber / MaxVersionNumber bound the history range (inclusive).
	MinVersionNumber *int
	MaxVersionNumber *int
	Limit            int
	Offset           int
}

// UserFilter locates a single user. At least one member must be set.
type UserFilter struct {
	ID    *uuid.UUID
	Email *string
}

// IsEmpty reports whether no filter member is set.
func (f UserFilter) IsEmpty() bool { return f.ID == nil && f.Email == nil }
