package domain

// Fixed conflict messages raised by ValidateFieldRelation. Exactly one of
// these literals accompanies every rejection.
const (
	MsgRelatedFieldMissing   = "must define relatedFieldId or both names"
	MsgRelatedNamesWithID    = "names must be null when relatedFieldId is defined"
	MsgRelatedNamesNonLookup = "names must be null when dataType is not Lookup"
)

// ValidateFieldRelation checks the lookup-field invariants on a proposed
// field create or update payload. It is pure and runs before any side effect.
//
// For Lookup fields exactly one of {relatedFieldID present} or
// {relatedFieldName and relatedFieldDisplayName both present} must hold.
// For non-Lookup fields neither name may be present, regardless of
// relatedFieldID.
func ValidateFieldRelation(dataType DataType, properties map[string]any, relatedFieldName, relatedFieldDisplayName *string) error {
	nameSet := relatedFieldName != nil && *relatedFieldName != ""
	displayNameSet := relatedFieldDisplayName != nil && *relatedFieldDisplayName != ""
	_, idSet := relatedFieldIDFromProperties(properties)

	if dataType != DataTypeLookup {
		if nameSet || displayNameSet {
			return NewConflictError(MsgRelatedNamesNonLookup)
		}
		return nil
	}

	if idSet {
		if nameSet || displayNameSet {
			return NewConflictError(MsgRelatedNamesWithID)
		}
		return nil
	}

	if !nameSet || !displayNameSet {
		return NewConflictError(MsgRelatedFieldMissing)
	}

	return nil
}
