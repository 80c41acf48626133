package domain

import (
	"time"

	"github.com/google/uuid"
)

// CurrentVersionNumber is the version number of the live working draft.
const CurrentVersionNumber = 0

// EntityVersion is an immutable snapshot identified by (EntityID,
// VersionNumber). Read-only after creation; version 0 is the live draft.
type EntityVersion struct {
	ID            uuid.UUID
	EntityID      uuid.UUID
	VersionNumber int
	Name          string
	DisplayName   string
	CommitMessage *string
	CreatedAt     time.Time
}

// IsCurrent reports whether the snapshot is the live working draft.
func (v *EntityVersion) IsCurrent() bool { return v.VersionNumber == CurrentVersionNumber }
