package api

import "time"

// Response payloads. All identifiers are rendered as uuid strings.

type entityPayload struct {
	ID                string              `json:"id"`
	AppID             string              `json:"appId"`
	Name              string              `json:"name"`
	DisplayName       string              `json:"displayName"`
	PluralDisplayName string              `json:"pluralDisplayName"`
	Description       *string             `json:"description,omitempty"`
	LockedByUserID    *string             `json:"lockedByUserId,omitempty"`
	LockedByUser      *userPayload        `json:"lockedByUser,omitempty"`
	Fields            []fieldPayload      `json:"fields"`
	Permissions       []permissionPayload `json:"permissions"`
	Versions          []versionPayload    `json:"versions,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
	DeletedAt         *time.Time          `json:"deletedAt,omitempty"`
}

type fieldPayload struct {
	ID          string         `json:"id"`
	EntityID    string         `json:"entityId"`
	Name        string         `json:"name"`
	DisplayName string         `json:"displayName"`
	DataType    string         `json:"dataType"`
	Properties  map[string]any `json:"properties"`
	Required    bool           `json:"required"`
	Searchable  bool           `json:"searchable"`
	Description *string        `json:"description,omitempty"`
	Position    int            `json:"position"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type versionPayload struct {
	ID            string    `json:"id"`
	EntityID      string    `json:"entityId"`
	VersionNumber int       `json:"versionNumber"`
	Name          string    `json:"name"`
	DisplayName   string    `json:"displayName"`
	CommitMessage *string   `json:"commitMessage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type permissionPayload struct {
	ID       string                   `json:"id"`
	EntityID string                   `json:"entityId"`
	Action   string                   `json:"action"`
	Type     string                   `json:"type"`
	RoleIDs  []string                 `json:"roleIds"`
	Fields   []permissionFieldPayload `json:"fields"`
}

type permissionFieldPayload struct {
	ID        string   `json:"id"`
	EntityID  string   `json:"entityId"`
	Action    string   `json:"action"`
	FieldID   string   `json:"fieldId"`
	FieldName string   `json:"fieldName"`
	RoleIDs   []string `json:"roleIds"`
}

type userPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
