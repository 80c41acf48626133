package domain

// DataType identifies the kind of value an entity field holds.
type DataType string

const (
	DataTypeSingleLineText     DataType = "SINGLE_LINE_TEXT"
	DataTypeMultiLineText      DataType = "MULTI_LINE_TEXT"
	DataTypeEmail              DataType = "EMAIL"
	DataTypeWholeNumber        DataType = "WHOLE_NUMBER"
	DataTypeDecimalNumber      DataType = "DECIMAL_NUMBER"
	DataTypeDateTime           DataType = "DATE_TIME"
	DataTypeBoolean            DataType = "BOOLEAN"
	DataTypeJSON               DataType = "JSON"
	DataTypeOptionSet          DataType = "OPTION_SET"
	DataTypeMultiSelectOptions DataType = "MULTI_SELECT_OPTION_SET"
	DataTypeGeographicLocation DataType = "GEOGRAPHIC_LOCATION"
	DataTypeLookup             DataType = "LOOKUP"
	DataTypeID                 DataType = "ID"
	DataTypeCreatedAt          DataType = "CREATED_AT"
	DataTypeUpdatedAt          DataType = "UPDATED_AT"
)

func (d DataType) String() string { return string(d) }

func (d DataType) IsValid() bool {
	switch d {
	case DataTypeSingleLineText, DataTypeMultiLineText, DataTypeEmail,
		DataTypeWholeNumber, DataTypeDecimalNumber, DataTypeDateTime,
		DataTypeBoolean, DataTypeJSON, DataTypeOptionSet,
		DataTypeMultiSelectOptions, DataTypeGeographicLocation,
		DataTypeLookup, DataTypeID, DataTypeCreatedAt, DataTypeUpdatedAt:
		return true
	}
	return false
}

// PermissionAction is the operation class a permission governs.
type PermissionAction string

const (
	PermissionActionView   PermissionAction = "VIEW"
	PermissionActionCreate PermissionAction = "CREATE"
	PermissionActionUpdate PermissionAction = "UPDATE"
	PermissionActionDelete PermissionAction = "DELETE"
	PermissionActionSearch PermissionAction = "SEARCH"
)

func (a PermissionAction) String() string { return string(a) }

func (a PermissionAction) IsValid() bool {
	switch a {
	case PermissionActionView, PermissionActionCreate, PermissionActionUpdate,
		PermissionActionDelete, PermissionActionSearch:
		return true
	}
	return false
}

// PermissionType determines how an entity-level permission is evaluated.
type PermissionType string

const (
	// PermissionTypeAllRoles grants the action to every role in the app.
	PermissionTypeAllRoles PermissionType = "ALL_ROLES"
	// PermissionTypeGranular grants the action to the explicit role set only.
	PermissionTypeGranular PermissionType = "GRANULAR"
	// PermissionTypeDisabled denies the action regardless of roles.
	PermissionTypeDisabled PermissionType = "DISABLED"
)

func (t PermissionType) String() string { return string(t) }

func (t PermissionType) IsValid() bool {
	switch t {
	case PermissionTypeAllRoles, PermissionTypeGranular, PermissionTypeDisabled:
		return true
	}
	return false
}
