package domain

import (
	"time"

	"github.com/google/uuid"
)

// Keys inside EntityField.Properties that are meaningful for Lookup fields:
// the id of an existing mirror field on the related entity, and the id of the
// related entity itself.
const (
	PropertyRelatedFieldID  = "relatedFieldId"
	PropertyRelatedEntityID = "relatedEntityId"
)

// EntityField is a typed field on an entity's current (version 0) draft.
type EntityField struct {
	ID          uuid.UUID
	EntityID    uuid.UUID
	Name        string
	DisplayName string
	DataType    DataType
	// Properties is the type-specific payload (max length, option values,
	// relatedFieldId for lookups, and so on).
	Properties  map[string]any
	Required    bool
	Searchable  bool
	Description *string
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RelatedFieldID extracts the relatedFieldId property of a Lookup field.
// Returns uuid.Nil and false when absent or malformed.
func (f *EntityField) RelatedFieldID() (uuid.UUID, bool) {
	return relatedFieldIDFromProperties(f.Properties)
}

// RelatedEntityID extracts the relatedEntityId property of a Lookup field.
// Returns uuid.Nil and false when absent or malformed.
func (f *EntityField) RelatedEntityID() (uuid.UUID, bool) {
	return uuidProperty(f.Properties, PropertyRelatedEntityID)
}

func relatedFieldIDFromProperties(props map[string]any) (uuid.UUID, bool) {
	return uuidProperty(props, PropertyRelatedFieldID)
}

func uuidProperty(props map[string]any, key string) (uuid.UUID, bool) {
	raw, ok := props[key]
	if !ok {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// EntityFieldUpdateParams are the mutable field attributes. Nil means unchanged.
type EntityFieldUpdateParams struct {
	Name        *string
	DisplayName *string
	DataType    *DataType
	Properties  map[string]any
	Required    *bool
	Searchable  *bool
	Description *string
	Position    *int
}
