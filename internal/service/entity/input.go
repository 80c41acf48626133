package entity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/domain"
)

// CreateEntityInput holds the parameters for creating an entity.
type CreateEntityInput struct {
	AppID             uuid.UUID
	Name              string
	DisplayName       string
	PluralDisplayName string
	Description       *string
}

// Validate checks all fields and collects all errors.
func (i CreateEntityInput) Validate() error {
	var errs []domain.FieldError

	if i.AppID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "app_id", Message: "required"})
	}
	name := strings.TrimSpace(i.Name)
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if len(name) > 100 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "max 100 characters"})
	}
	if strings.TrimSpace(i.DisplayName) == "" {
		errs = append(errs, domain.FieldError{Field: "display_name", Message: "required"})
	}
	if strings.TrimSpace(i.PluralDisplayName) == "" {
		errs = append(errs, domain.FieldError{Field: "plural_display_name", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateEntityInput holds the parameters for updating an entity.
type UpdateEntityInput struct {
	EntityID uuid.UUID
	Params   domain.EntityUpdateParams
}

// Validate checks all fields and collects all errors.
func (i UpdateEntityInput) Validate() error {
	var errs []domain.FieldError

	if i.EntityID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "entity_id", Message: "required"})
	}
	p := i.Params
	if p.Name == nil && p.DisplayName == nil && p.PluralDisplayName == nil && p.Description == nil {
		errs = append(errs, domain.FieldError{Field: "input", Message: "at least one field must be provided"})
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if p.DisplayName != nil && strings.TrimSpace(*p.DisplayName) == "" {
		errs = append(errs, domain.FieldError{Field: "display_name", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CreateFieldInput holds the parameters for creating an entity field.
// RelatedFieldName and RelatedFieldDisplayName request creation of a mirror
// field on the related entity; only valid for Lookup fields without a
// relatedFieldId property.
type CreateFieldInput struct {
	EntityID                uuid.UUID
	Name                    string
	DisplayName             string
	DataType                domain.DataType
	Properties              map[string]any
	Required                bool
	Searchable              bool
	Description             *string
	RelatedFieldName        *string
	RelatedFieldDisplayName *string
}

// Validate checks all fields and collects all errors. The lookup-relation
// invariants are checked separately by domain.ValidateFieldRelation.
func (i CreateFieldInput) Validate() error {
	var errs []domain.FieldError

	if i.EntityID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "entity_id", Message: "required"})
	}
	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if strings.TrimSpace(i.DisplayName) == "" {
		errs = append(errs, domain.FieldError{Field: "display_name", Message: "required"})
	}
	if !i.DataType.IsValid() {
		errs = append(errs, domain.FieldError{Field: "data_type", Message: "unknown data type"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CreateFieldByDisplayNameInput holds the parameters for creating a field
// from a display name only; the name and data type are inferred.
type CreateFieldByDisplayNameInput struct {
	EntityID    uuid.UUID
	DisplayName string
}

// Validate checks all fields and collects all errors.
func (i CreateFieldByDisplayNameInput) Validate() error {
	var errs []domain.FieldError

	if i.EntityID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "entity_id", Message: "required"})
	}
	if strings.TrimSpace(i.DisplayName) == "" {
		errs = append(errs, domain.FieldError{Field: "display_name", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateFieldInput holds the parameters for updating an entity field.
type UpdateFieldInput struct {
	FieldID                 uuid.UUID
	Params                  domain.EntityFieldUpdateParams
	RelatedFieldName        *string
	RelatedFieldDisplayName *string
}

// Validate checks all fields and collects all errors.
func (i UpdateFieldInput) Validate() error {
	var errs []domain.FieldError

	if i.FieldID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "field_id", Message: "required"})
	}
	if i.Params.DataType != nil && !i.Params.DataType.IsValid() {
		errs = append(errs, domain.FieldError{Field: "data_type", Message: "unknown data type"})
	}
	if i.Params.Name != nil && strings.TrimSpace(*i.Params.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdatePermissionInput holds the parameters for changing how an entity-level
// permission is evaluated.
type UpdatePermissionInput struct {
	EntityID uuid.UUID
	Action   domain.PermissionAction
	Type     domain.PermissionType
}

// Validate checks all fields and collects all errors.
func (i UpdatePermissionInput) Validate() error {
	var errs []domain.FieldError

	if i.EntityID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "entity_id", Message: "required"})
	}
	if !i.Action.IsValid() {
		errs = append(errs, domain.FieldError{Field: "action", Message: "unknown action"})
	}
	if !i.Type.IsValid() {
		errs = append(errs, domain.FieldError{Field: "type", Message: "unknown permission type"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdatePermissionRolesInput holds an add/remove delta for an entity-level
// permission's role set.
type UpdatePermissionRolesInput struct {
	EntityID uuid.UUID
	Action   domain.PermissionAction
	Delta    domain.PermissionRolesDelta
}

// Validate checks all fields and collects all errors.
func (i UpdatePermissionRolesInput) Validate() error {
	var errs []domain.FieldError

	if i.EntityID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "entity_id", Message: "required"})
	}
	if !i.Action.IsValid() {
		errs = append(errs, domain.FieldError{Field: "action", Message: "unknown action"})
	}
	if i.Delta.IsEmpty() {
		errs = append(errs, domain.FieldError{Field: "delta", Message: "at least one role change required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// PermissionFieldInput identifies a field-granularity permission override by
// (entity, action, field name).
type PermissionFieldInput struct {
	EntityID  uuid.UUID
	Action    domain.PermissionAction
	FieldName string
}

// Validate checks all fields and collects all errors.
func (i PermissionFieldInput) Validate() error {
	var errs []domain.FieldError

	if i.EntityID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "entity_id", Message: "required"})
	}
	if !i.Action.IsValid() {
		errs = append(errs, domain.FieldError{Field: "action", Message: "unknown action"})
	}
	if strings.TrimSpace(i.FieldName) == "" {
		errs = append(errs, domain.FieldError{Field: "field_name", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdatePermissionFieldRolesInput holds an add/remove delta for a
// field-granularity permission override's role set.
type UpdatePermissionFieldRolesInput struct {
	PermissionFieldID uuid.UUID
	Delta             domain.PermissionRolesDelta
}

// Validate checks all fields and collects all errors.
func (i UpdatePermissionFieldRolesInput) Validate() error {
	var errs []domain.FieldError

	if i.PermissionFieldID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "permission_field_id", Message: "required"})
	}
	if i.Delta.IsEmpty() {
		errs = append(errs, domain.FieldError{Field: "delta", Message: "at least one role change required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CreateVersionInput holds the parameters for appending a history snapshot.
type CreateVersionInput struct {
	EntityID      uuid.UUID
	CommitMessage *string
}

// Validate checks all fields and collects all errors.
func (i CreateVersionInput) Validate() error {
	if i.EntityID == uuid.Nil {
		return domain.NewValidationError("entity_id", "required")
	}
	return nil
}
