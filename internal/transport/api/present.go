package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/domain"
	"github.com/forgewell/appforge-backend/internal/service/entity"
	"github.com/forgewell/appforge-backend/internal/transport/api/loader"
)

// presenter resolves derived fields on entity payloads. Per-request loaders
// from the context batch the reads; the service path is the fallback when no
// loaders are installed (tests, non-HTTP callers).
type presenter struct {
	entities *entity.Service
}

// entityOptions controls which derived fields a payload carries.
type entityOptions struct {
	// includeVersions adds the version history, narrowed by versionFilter.
	includeVersions bool
	versionFilter   domain.VersionFilter
}

func (p *presenter) entity(ctx context.Context, e *domain.Entity, opts entityOptions) (*entityPayload, error) {
	if e == nil {
		return nil, nil
	}

	fields, err := p.resolveFields(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("resolve fields: %w", err)
	}

	permissions, err := p.resolvePermissions(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("resolve permissions: %w", err)
	}

	lockedByUser, err := p.resolveLockedByUser(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("resolve lock holder: %w", err)
	}

	payload := &entityPayload{
		ID:                e.ID.String(),
		AppID:             e.AppID.String(),
		Name:              e.Name,
		DisplayName:       e.DisplayName,
		PluralDisplayName: e.PluralDisplayName,
		Description:       e.Description,
		LockedByUserID:    uuidPtrString(e.LockedByUserID),
		LockedByUser:      presentUser(lockedByUser),
		Fields:            presentFields(fields),
		Permissions:       presentPermissions(permissions),
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
		DeletedAt:         e.DeletedAt,
	}

	if opts.includeVersions {
		versions, err := p.entities.Versions(ctx, e, opts.versionFilter)
		if err != nil {
			return nil, fmt.Errorf("resolve versions: %w", err)
		}
		payload.Versions = presentVersions(versions)
	}

	return payload, nil
}

func (p *presenter) entityList(ctx context.Context, entities []*domain.Entity) ([]*entityPayload, error) {
	payloads := make([]*entityPayload, len(entities))
	for i, e := range entities {
		payload, err := p.entity(ctx, e, entityOptions{})
		if err != nil {
			return nil, err
		}
		payloads[i] = payload
	}
	return payloads, nil
}

// resolveFields returns the parent's prefetched set when non-empty, else a
// batched (or direct) fetch of the version-0 fields.
func (p *presenter) resolveFields(ctx context.Context, e *domain.Entity) ([]*domain.EntityField, error) {
	if len(e.Fields) > 0 {
		return e.Fields, nil
	}
	if l := loader.FromContext(ctx); l != nil {
		return l.FieldsByEntityID.Load(ctx, e.ID)()
	}
	return p.entities.Fields(ctx, e, domain.FieldFilter{})
}

// resolvePermissions is always a fresh fetch, batched when loaders are
// installed.
func (p *presenter) resolvePermissions(ctx context.Context, e *domain.Entity) ([]*domain.EntityPermission, error) {
	if l := loader.FromContext(ctx); l != nil {
		return l.PermissionsByEntityID.Load(ctx, e.ID)()
	}
	return p.entities.Permissions(ctx, e)
}

func (p *presenter) resolveLockedByUser(ctx context.Context, e *domain.Entity) (*domain.User, error) {
	if e.LockedByUserID == nil {
		return nil, nil
	}
	if l := loader.FromContext(ctx); l != nil {
		return l.UserByID.Load(ctx, *e.LockedByUserID)()
	}
	return p.entities.LockedByUser(ctx, e)
}

func presentFields(fields []*domain.EntityField) []fieldPayload {
	out := make([]fieldPayload, len(fields))
	for i, f := range fields {
		out[i] = presentField(f)
	}
	return out
}

func presentField(f *domain.EntityField) fieldPayload {
	return fieldPayload{
		ID:          f.ID.String(),
		EntityID:    f.EntityID.String(),
		Name:        f.Name,
		DisplayName: f.DisplayName,
		DataType:    f.DataType.String(),
		Properties:  f.Properties,
		Required:    f.Required,
		Searchable:  f.Searchable,
		Description: f.Description,
		Position:    f.Position,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func presentVersions(versions []*domain.EntityVersion) []versionPayload {
	out := make([]versionPayload, len(versions))
	for i, v := range versions {
		out[i] = presentVersion(v)
	}
	return out
}

func presentVersion(v *domain.EntityVersion) versionPayload {
	return versionPayload{
		ID:            v.ID.String(),
		EntityID:      v.EntityID.String(),
		VersionNumber: v.VersionNumber,
		Name:          v.Name,
		DisplayName:   v.DisplayName,
		CommitMessage: v.CommitMessage,
		CreatedAt:     v.CreatedAt,
	}
}

func presentPermissions(permissions []*domain.EntityPermission) []permissionPayload {
	out := make([]permissionPayload, len(permissions))
	for i, p := range permissions {
		out[i] = presentPermission(p)
	}
	return out
}

func presentPermission(p *domain.EntityPermission) permissionPayload {
	fields := make([]permissionFieldPayload, len(p.Fields))
	for i, pf := range p.Fields {
		fields[i] = presentPermissionField(pf)
	}
	return permissionPayload{
		ID:       p.ID.String(),
		EntityID: p.EntityID.String(),
		Action:   p.Action.String(),
		Type:     p.Type.String(),
		RoleIDs:  uuidStrings(p.RoleIDs),
		Fields:   fields,
	}
}

func presentPermissionField(pf *domain.EntityPermissionField) permissionFieldPayload {
	return permissionFieldPayload{
		ID:        pf.ID.String(),
		EntityID:  pf.EntityID.String(),
		Action:    pf.Action.String(),
		FieldID:   pf.FieldID.String(),
		FieldName: pf.FieldName,
		RoleIDs:   uuidStrings(pf.RoleIDs),
	}
}

func presentUser(u *domain.User) *userPayload {
	if u == nil {
		return nil
	}
	return &userPayload{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
