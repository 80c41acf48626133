package entity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/domain"
	"github.com/forgewell/appforge-backend/pkg/ctxutil"
)

// CreateField creates a field on the entity's working draft. The
// lookup-relation invariants are validated before any side effect. When the
// payload requests a mirror field (relatedFieldName + relatedFieldDisplayName)
// the mirror is created on the related entity in the same transaction and the
// two fields are cross-linked by relatedFieldId.
func (s *Service) CreateField(ctx context.Context, input CreateFieldInput) (*domain.EntityField, error) {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateFieldRelation(input.DataType, input.Properties, input.RelatedFieldName, input.RelatedFieldDisplayName); err != nil {
		return nil, err
	}

	var created *domain.EntityField
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.entities.GetByID(txCtx, input.EntityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}
		if err := guardLock(e, callerID); err != nil {
			return err
		}

		position, err := s.fields.NextPosition(txCtx, input.EntityID)
		if err != nil {
			return fmt.Errorf("next position: %w", err)
		}
		if position >= MaxFieldsPerEntity {
			return domain.NewValidationError("fields", "limit reached (max 200)")
		}

		created, err = s.fields.Create(txCtx, &domain.EntityField{
			EntityID:    input.EntityID,
			Name:        strings.TrimSpace(input.Name),
			DisplayName: strings.TrimSpace(input.DisplayName),
			DataType:    input.DataType,
			Properties:  cloneProperties(input.Properties),
			Required:    input.Required,
			Searchable:  input.Searchable,
			Description: trimOrNil(input.Description),
			Position:    position,
		})
		if err != nil {
			return fmt.Errorf("create field: %w", err)
		}

		if input.DataType == domain.DataTypeLookup {
			if err := s.linkLookupField(txCtx, created, input); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "field created",
		slog.String("caller_id", callerID.String()),
		slog.String("entity_id", input.EntityID.String()),
		slog.String("field_id", created.ID.String()),
		slog.String("data_type", created.DataType.String()),
	)

	return created, nil
}

// linkLookupField wires a newly created Lookup field to its mirror: either by
// verifying an existing relatedFieldId reference, or by creating the mirror
// field on the related entity and cross-linking both sides.
func (s *Service) linkLookupField(ctx context.Context, created *domain.EntityField, input CreateFieldInput) error {
	if relatedFieldID, ok := created.RelatedFieldID(); ok {
		if _, err := s.fields.GetByID(ctx, relatedFieldID); err != nil {
			return fmt.Errorf("get related field: %w", err)
		}
		return nil
	}

	relatedEntityID, ok := created.RelatedEntityID()
	if !ok {
		return domain.NewValidationError("properties."+domain.PropertyRelatedEntityID, "required for lookup fields")
	}
	relatedEntity, err := s.entities.GetByID(ctx, relatedEntityID)
	if err != nil {
		return fmt.Errorf("get related entity: %w", err)
	}

	mirrorPosition, err := s.fields.NextPosition(ctx, relatedEntity.ID)
	if err != nil {
		return fmt.Errorf("next mirror position: %w", err)
	}

	mirror, err := s.fields.Create(ctx, &domain.EntityField{
		EntityID:    relatedEntity.ID,
		Name:        strings.TrimSpace(*input.RelatedFieldName),
		DisplayName: strings.TrimSpace(*input.RelatedFieldDisplayName),
		DataType:    domain.DataTypeLookup,
		Properties: map[string]any{
			domain.PropertyRelatedEntityID: created.EntityID.String(),
			domain.PropertyRelatedFieldID:  created.ID.String(),
		},
		Position: mirrorPosition,
	})
	if err != nil {
		return fmt.Errorf("create mirror field: %w", err)
	}

	props := cloneProperties(created.Properties)
	props[domain.PropertyRelatedFieldID] = mirror.ID.String()
	updated, err := s.fields.Update(ctx, created.ID, domain.EntityFieldUpdateParams{Properties: props})
	if err != nil {
		return fmt.Errorf("link mirror field: %w", err)
	}
	*created = *updated

	return nil
}

// CreateFieldByDisplayName creates a field from a display name only: the
// machine name is normalized from it and the data type is inferred. A display
// name matching an existing entity in the same app becomes a Lookup field
// with a mirror on that entity.
func (s *Service) CreateFieldByDisplayName(ctx context.Context, input CreateFieldByDisplayNameInput) (*domain.EntityField, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	e, err := s.entities.GetByID(ctx, input.EntityID)
	if err != nil {
		return nil, fmt.Errorf("get entity: %w", err)
	}

	displayName := strings.TrimSpace(input.DisplayName)
	name := domain.NormalizeFieldName(displayName)
	if name == "" {
		return nil, domain.NewValidationError("display_name", "contains no usable characters")
	}

	fieldInput := CreateFieldInput{
		EntityID:    input.EntityID,
		Name:        name,
		DisplayName: displayName,
		DataType:    inferDataType(displayName),
		Properties:  map[string]any{},
	}

	if related := s.matchRelatedEntity(ctx, e.AppID, displayName); related != nil && related.ID != e.ID {
		fieldInput.DataType = domain.DataTypeLookup
		fieldInput.Properties = map[string]any{
			domain.PropertyRelatedEntityID: related.ID.String(),
		}
		mirrorName := domain.NormalizeFieldName(e.PluralDisplayName)
		fieldInput.RelatedFieldName = &mirrorName
		mirrorDisplay := e.PluralDisplayName
		fieldInput.RelatedFieldDisplayName = &mirrorDisplay
	}

	return s.CreateField(ctx, fieldInput)
}

// matchRelatedEntity finds an entity in the app whose display name matches
// the proposed field display name. Returns nil when there is no match.
func (s *Service) matchRelatedEntity(ctx context.Context, appID uuid.UUID, displayName string) *domain.Entity {
	entities, err := s.entities.List(ctx, domain.EntityFilter{AppID: &appID})
	if err != nil {
		return nil
	}
	want := strings.ToLower(strings.TrimSpace(displayName))
	for _, e := range entities {
		if strings.ToLower(e.DisplayName) == want || strings.ToLower(e.PluralDisplayName) == want {
			return e
		}
	}
	return nil
}

// inferDataType guesses a data type from keywords in the display name.
// Defaults to single-line text.
func inferDataType(displayName string) domain.DataType {
	lower := strings.ToLower(displayName)
	switch {
	case strings.Contains(lower, "email"):
		return domain.DataTypeEmail
	case strings.Contains(lower, "date") || strings.Contains(lower, "time"):
		return domain.DataTypeDateTime
	case strings.HasPrefix(lower, "is ") || strings.HasPrefix(lower, "has ") || strings.Contains(lower, "enabled"):
		return domain.DataTypeBoolean
	case strings.Contains(lower, "price") || strings.Contains(lower, "amount") || strings.Contains(lower, "rate"):
		return domain.DataTypeDecimalNumber
	case strings.Contains(lower, "count") || strings.Contains(lower, "quantity") || strings.Contains(lower, "number"):
		return domain.DataTypeWholeNumber
	default:
		return domain.DataTypeSingleLineText
	}
}

// UpdateField changes a field on the entity's working draft. The
// lookup-relation invariants are re-validated against the merged payload
// (proposed changes over current values) before any write.
func (s *Service) UpdateField(ctx context.Context, input UpdateFieldInput) (*domain.EntityField, error) {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.EntityField
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		f, err := s.fields.GetByID(txCtx, input.FieldID)
		if err != nil {
			return fmt.Errorf("get field: %w", err)
		}
		e, err := s.entities.GetByID(txCtx, f.EntityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}
		if err := guardLock(e, callerID); err != nil {
			return err
		}

		dataType := f.DataType
		if input.Params.DataType != nil {
			dataType = *input.Params.DataType
		}
		properties := f.Properties
		if input.Params.Properties != nil {
			properties = input.Params.Properties
		}
		if err := domain.ValidateFieldRelation(dataType, properties, input.RelatedFieldName, input.RelatedFieldDisplayName); err != nil {
			return err
		}

		updated, err = s.fields.Update(txCtx, input.FieldID, input.Params)
		if err != nil {
			return fmt.Errorf("update field: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "field updated",
		slog.String("caller_id", callerID.String()),
		slog.String("field_id", input.FieldID.String()),
	)

	return updated, nil
}

// DeleteField removes a field from the entity's working draft.
func (s *Service) DeleteField(ctx context.Context, fieldID uuid.UUID) (*domain.EntityField, error) {
	callerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if fieldID == uuid.Nil {
		return nil, domain.NewValidationError("field_id", "required")
	}

	var deleted *domain.EntityField
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		f, err := s.fields.GetByID(txCtx, fieldID)
		if err != nil {
			return fmt.Errorf("get field: %w", err)
		}
		e, err := s.entities.GetByID(txCtx, f.EntityID)
		if err != nil {
			return fmt.Errorf("get entity: %w", err)
		}
		if err := guardLock(e, callerID); err != nil {
			return err
		}

		if err := s.fields.Delete(txCtx, fieldID); err != nil {
			return fmt.Errorf("delete field: %w", err)
		}
		deleted = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "field deleted",
		slog.String("caller_id", callerID.String()),
		slog.String("field_id", fieldID.String()),
	)

	return deleted, nil
}

// cloneProperties shallow-copies a properties payload so stored fields never
// alias caller maps.
func cloneProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
