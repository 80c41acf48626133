package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/argtree"
	"github.com/forgewell/appforge-backend/internal/domain"
)

type oracleMock struct {
	MayAccessFunc func(ctx context.Context, callerID uuid.UUID, kind ResourceKind, resourceID uuid.UUID, action Action) (bool, error)

	calls []oracleCall
}

type oracleCall struct {
	CallerID   uuid.UUID
	Kind       ResourceKind
	ResourceID uuid.UUID
	Action     Action
}

func (m *oracleMock) MayAccess(ctx context.Context, callerID uuid.UUID, kind ResourceKind, resourceID uuid.UUID, action Action) (bool, error) {
	m.calls = append(m.calls, oracleCall{CallerID: callerID, Kind: kind, ResourceID: resourceID, Action: action})
	if m.MayAccessFunc == nil {
		panic("oracleMock.MayAccessFunc: method is nil but was called")
	}
	return m.MayAccessFunc(ctx, callerID, kind, resourceID, action)
}

type storeMock struct {
	FieldEntityIDFunc           func(ctx context.Context, fieldID uuid.UUID) (uuid.UUID, error)
	PermissionFieldEntityIDFunc func(ctx context.Context, permissionFieldID uuid.UUID) (uuid.UUID, error)
}

func (m *storeMock) FieldEntityID(ctx context.Context, fieldID uuid.UUID) (uuid.UUID, error) {
	if m.FieldEntityIDFunc == nil {
		panic("storeMock.FieldEntityIDFunc: method is nil but was called")
	}
	return m.FieldEntityIDFunc(ctx, fieldID)
}

func (m *storeMock) PermissionFieldEntityID(ctx context.Context, permissionFieldID uuid.UUID) (uuid.UUID, error) {
	if m.PermissionFieldEntityIDFunc == nil {
		panic("storeMock.PermissionFieldEntityIDFunc: method is nil but was called")
	}
	return m.PermissionFieldEntityIDFunc(ctx, permissionFieldID)
}

func argsFromJSON(t *testing.T, s string) *argtree.Node {
	t.Helper()
	n, err := argtree.FromJSON([]byte(s))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	return n
}

func TestAuthorize_Allows(t *testing.T) {
	t.Parallel()

	caller := uuid.New()
	entityID := uuid.New()
	oracle := &oracleMock{
		MayAccessFunc: func(ctx context.Context, callerID uuid.UUID, kind ResourceKind, resourceID uuid.UUID, action Action) (bool, error) {
			return true, nil
		},
	}
	r := NewResolver(oracle, &storeMock{})

	d := Descriptor{Kind: ResourceEntity, Path: "where.id", Action: ActionView}
	args := argsFromJSON(t, `{"where":{"id":"`+entityID.String()+`"}}`)

	if err := r.Authorize(context.Background(), caller, d, args); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if len(oracle.calls) != 1 {
		t.Fatalf("oracle calls: got %d, want 1", len(oracle.calls))
	}
	call := oracle.calls[0]
	if call.CallerID != caller || call.Kind != ResourceEntity || call.ResourceID != entityID || call.Action != ActionView {
		t.Errorf("unexpected oracle call: %+v", call)
	}
}

func TestAuthorize_DeniesWithForbidden(t *testing.T) {
	t.Parallel()

	oracle := &oracleMock{
		MayAccessFunc: func(ctx context.Context, callerID uuid.UUID, kind ResourceKind, resourceID uuid.UUID, action Action) (bool, error) {
			return false, nil
		},
	}
	r := NewResolver(oracle, &storeMock{})

	d := Descriptor{Kind: ResourceEntity, Path: "where.id", Action: ActionEdit}
	args := argsFromJSON(t, `{"where":{"id":"`+uuid.NewString()+`"}}`)

	err := r.Authorize(context.Background(), uuid.New(), d, args)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthorize_ResolutionFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args string
	}{
		{"path missing", `{"data":{}}`},
		{"id is not a string", `{"where":{"id":42}}`},
		{"id is not a uuid", `{"where":{"id":"not-a-uuid"}}`},
		{"segment is scalar", `{"where":"flat"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			oracle := &oracleMock{}
			r := NewResolver(oracle, &storeMock{})
			d := Descriptor{Kind: ResourceEntity, Path: "where.id", Action: ActionView}

			err := r.Authorize(context.Background(), uuid.New(), d, argsFromJSON(t, tt.args))
			if !errors.Is(err, domain.ErrResolution) {
				t.Fatalf("expected ErrResolution, got %v", err)
			}
			if len(oracle.calls) != 0 {
				t.Errorf("oracle consulted despite resolution failure")
			}
		})
	}
}

func TestAuthorize_FieldKindsResolveToOwningEntity(t *testing.T) {
	t.Parallel()

	fieldID := uuid.New()
	entityID := uuid.New()

	tests := []struct {
		name string
		kind ResourceKind
	}{
		{"entity field", ResourceEntityField},
		{"permission field", ResourceEntityPermissionField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			oracle := &oracleMock{
				MayAccessFunc: func(ctx context.Context, callerID uuid.UUID, kind ResourceKind, resourceID uuid.UUID, action Action) (bool, error) {
					return true, nil
				},
			}
			store := &storeMock{
				FieldEntityIDFunc: func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
					if id != fieldID {
						t.Errorf("field lookup id: got %s, want %s", id, fieldID)
					}
					return entityID, nil
				},
				PermissionFieldEntityIDFunc: func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
					if id != fieldID {
						t.Errorf("permission field lookup id: got %s, want %s", id, fieldID)
					}
					return entityID, nil
				},
			}
			r := NewResolver(oracle, store)
			d := Descriptor{Kind: tt.kind, Path: "where.id", Action: ActionEdit}
			args := argsFromJSON(t, `{"where":{"id":"`+fieldID.String()+`"}}`)

			if err := r.Authorize(context.Background(), uuid.New(), d, args); err != nil {
				t.Fatalf("Authorize: %v", err)
			}
			call := oracle.calls[0]
			if call.Kind != ResourceEntity || call.ResourceID != entityID {
				t.Errorf("oracle asked about %s %s, want ENTITY %s", call.Kind, call.ResourceID, entityID)
			}
		})
	}
}

func TestAuthorize_UnknownFieldMapsToResolution(t *testing.T) {
	t.Parallel()

	store := &storeMock{
		FieldEntityIDFunc: func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
			return uuid.Nil, domain.ErrNotFound
		},
	}
	oracle := &oracleMock{}
	r := NewResolver(oracle, store)
	d := Descriptor{Kind: ResourceEntityField, Path: "where.id", Action: ActionEdit}
	args := argsFromJSON(t, `{"where":{"id":"`+uuid.NewString()+`"}}`)

	err := r.Authorize(context.Background(), uuid.New(), d, args)
	if !errors.Is(err, domain.ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
	if len(oracle.calls) != 0 {
		t.Errorf("oracle consulted despite unresolvable resource")
	}
}

func TestAuthorize_OracleErrorPassesThrough(t *testing.T) {
	t.Parallel()

	boom := errors.New("membership store down")
	oracle := &oracleMock{
		MayAccessFunc: func(ctx context.Context, callerID uuid.UUID, kind ResourceKind, resourceID uuid.UUID, action Action) (bool, error) {
			return false, boom
		},
	}
	r := NewResolver(oracle, &storeMock{})
	d := Descriptor{Kind: ResourceApp, Path: "where.app.id", Action: ActionView}
	args := argsFromJSON(t, `{"where":{"app":{"id":"`+uuid.NewString()+`"}}}`)

	err := r.Authorize(context.Background(), uuid.New(), d, args)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped oracle error, got %v", err)
	}
	if errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrResolution) {
		t.Errorf("infrastructure error must not masquerade as denial: %v", err)
	}
}

func TestExtractID(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	tests := []struct {
		name string
		args string
		path string
	}{
		{"bare string", `{"where":{"id":"` + id.String() + `"}}`, "where.id"},
		{"filter object", `{"where":{"entity":{"id":"` + id.String() + `"}}}`, "where.entity"},
		{"connect reference", `{"data":{"entity":{"connect":{"id":"` + id.String() + `"}}}}`, "data.entity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ExtractID(argsFromJSON(t, tt.args), tt.path)
			if err != nil {
				t.Fatalf("ExtractID: %v", err)
			}
			if got != id {
				t.Errorf("got %s, want %s", got, id)
			}
		})
	}
}
