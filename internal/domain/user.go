package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an external identity. Entities reference users only through
// LockedByUserID, a non-owning reference used purely for lookup.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
