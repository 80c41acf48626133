package entity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/domain"
)

// Hand-rolled mocks for the repository interfaces. Each mock records calls
// under a single lock and panics when a method without a configured Func is
// called, so a test that forgot to stub a dependency fails loudly.

var _ entityRepo = &entityRepoMock{}

type entityRepoMock struct {
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.Entity, error)
	ListFunc       func(ctx context.Context, filter domain.EntityFilter) ([]*domain.Entity, error)
	CreateFunc     func(ctx context.Context, e *domain.Entity) (*domain.Entity, error)
	UpdateFunc     func(ctx context.Context, id uuid.UUID, params domain.EntityUpdateParams) (*domain.Entity, error)
	SoftDeleteFunc func(ctx context.Context, id uuid.UUID, deletedName string) (*domain.Entity, error)
	SetLockFunc    func(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*domain.Entity, error)

	mu    sync.Mutex
	calls struct {
		GetByID    []uuid.UUID
		List       []domain.EntityFilter
		Create     []*domain.Entity
		Update     []domain.EntityUpdateParams
		SoftDelete []struct {
			ID          uuid.UUID
			DeletedName string
		}
		SetLock []struct {
			ID     uuid.UUID
			UserID *uuid.UUID
		}
	}
}

func (m *entityRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entity, error) {
	if m.GetByIDFunc == nil {
		panic("entityRepoMock.GetByIDFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.GetByID = append(m.calls.GetByID, id)
	m.mu.Unlock()
	return m.GetByIDFunc(ctx, id)
}

func (m *entityRepoMock) GetByIDCalls() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.GetByID
}

func (m *entityRepoMock) List(ctx context.Context, filter domain.EntityFilter) ([]*domain.Entity, error) {
	if m.ListFunc == nil {
		panic("entityRepoMock.ListFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.List = append(m.calls.List, filter)
	m.mu.Unlock()
	return m.ListFunc(ctx, filter)
}

func (m *entityRepoMock) Create(ctx context.Context, e *domain.Entity) (*domain.Entity, error) {
	if m.CreateFunc == nil {
		panic("entityRepoMock.CreateFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.Create = append(m.calls.Create, e)
	m.mu.Unlock()
	return m.CreateFunc(ctx, e)
}

func (m *entityRepoMock) CreateCalls() []*domain.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Create
}

func (m *entityRepoMock) Update(ctx context.Context, id uuid.UUID, params domain.EntityUpdateParams) (*domain.Entity, error) {
	if m.UpdateFunc == nil {
		panic("entityRepoMock.UpdateFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.Update = append(m.calls.Update, params)
	m.mu.Unlock()
	return m.UpdateFunc(ctx, id, params)
}

func (m *entityRepoMock) UpdateCalls() []domain.EntityUpdateParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Update
}

func (m *entityRepoMock) SoftDelete(ctx context.Context, id uuid.UUID, deletedName string) (*domain.Entity, error) {
	if m.SoftDeleteFunc == nil {
		panic("entityRepoMock.SoftDeleteFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.SoftDelete = append(m.calls.SoftDelete, struct {
		ID          uuid.UUID
		DeletedName string
	}{ID: id, DeletedName: deletedName})
	m.mu.Unlock()
	return m.SoftDeleteFunc(ctx, id, deletedName)
}

func (m *entityRepoMock) SoftDeleteCalls() []struct {
	ID          uuid.UUID
	DeletedName string
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.SoftDelete
}

func (m *entityRepoMock) SetLock(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*domain.Entity, error) {
	if m.SetLockFunc == nil {
		panic("entityRepoMock.SetLockFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.SetLock = append(m.calls.SetLock, struct {
		ID     uuid.UUID
		UserID *uuid.UUID
	}{ID: id, UserID: userID})
	m.mu.Unlock()
	return m.SetLockFunc(ctx, id, userID)
}

func (m *entityRepoMock) SetLockCalls() []struct {
	ID     uuid.UUID
	UserID *uuid.UUID
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.SetLock
}

var _ fieldRepo = &fieldRepoMock{}

type fieldRepoMock struct {
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.EntityField, error)
	ListByEntityIDFunc func(ctx context.Context, entityID uuid.UUID, filter domain.FieldFilter) ([]*domain.EntityField, error)
	CreateFunc         func(ctx context.Context, f *domain.EntityField) (*domain.EntityField, error)
	UpdateFunc         func(ctx context.Context, id uuid.UUID, params domain.EntityFieldUpdateParams) (*domain.EntityField, error)
	DeleteFunc         func(ctx context.Context, id uuid.UUID) error
	NextPositionFunc   func(ctx context.Context, entityID uuid.UUID) (int, error)

	mu    sync.Mutex
	calls struct {
		GetByID        []uuid.UUID
		ListByEntityID []uuid.UUID
		Create         []*domain.EntityField
		Update         []struct {
			ID     uuid.UUID
			Params domain.EntityFieldUpdateParams
		}
		Delete       []uuid.UUID
		NextPosition []uuid.UUID
	}
}

func (m *fieldRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.EntityField, error) {
	if m.GetByIDFunc == nil {
		panic("fieldRepoMock.GetByIDFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.GetByID = append(m.calls.GetByID, id)
	m.mu.Unlock()
	return m.GetByIDFunc(ctx, id)
}

func (m *fieldRepoMock) GetByIDCalls() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.GetByID
}

func (m *fieldRepoMock) ListByEntityID(ctx context.Context, entityID uuid.UUID, filter domain.FieldFilter) ([]*domain.EntityField, error) {
	if m.ListByEntityIDFunc == nil {
		panic("fieldRepoMock.ListByEntityIDFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.ListByEntityID = append(m.calls.ListByEntityID, entityID)
	m.mu.Unlock()
	return m.ListByEntityIDFunc(ctx, entityID, filter)
}

func (m *fieldRepoMock) ListByEntityIDCalls() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.ListByEntityID
}

func (m *fieldRepoMock) Create(ctx context.Context, f *domain.EntityField) (*domain.EntityField, error) {
	if m.CreateFunc == nil {
		panic("fieldRepoMock.CreateFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.Create = append(m.calls.Create, f)
	m.mu.Unlock()
	return m.CreateFunc(ctx, f)
}

func (m *fieldRepoMock) CreateCalls() []*domain.EntityField {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Create
}

func (m *fieldRepoMock) Update(ctx context.Context, id uuid.UUID, params domain.EntityFieldUpdateParams) (*domain.EntityField, error) {
	if m.UpdateFunc == nil {
		panic("fieldRepoMock.UpdateFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.Update = append(m.calls.Update, struct {
		ID     uuid.UUID
		Params domain.EntityFieldUpdateParams
	}{ID: id, Params: params})
	m.mu.Unlock()
	return m.UpdateFunc(ctx, id, params)
}

func (m *fieldRepoMock) UpdateCalls() []struct {
	ID     uuid.UUID
	Params domain.EntityFieldUpdateParams
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Update
}

func (m *fieldRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc == nil {
		panic("fieldRepoMock.DeleteFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.Delete = append(m.calls.Delete, id)
	m.mu.Unlock()
	return m.DeleteFunc(ctx, id)
}

func (m *fieldRepoMock) DeleteCalls() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Delete
}

func (m *fieldRepoMock) NextPosition(ctx context.Context, entityID uuid.UUID) (int, error) {
	if m.NextPositionFunc == nil {
		panic("fieldRepoMock.NextPositionFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.NextPosition = append(m.calls.NextPosition, entityID)
	m.mu.Unlock()
	return m.NextPositionFunc(ctx, entityID)
}

var _ versionRepo = &versionRepoMock{}

type versionRepoMock struct {
	ListByEntityIDFunc    func(ctx context.Context, entityID uuid.UUID, filter domain.VersionFilter) ([]*domain.EntityVersion, error)
	CreateFunc            func(ctx context.Context, v *domain.EntityVersion) (*domain.EntityVersion, error)
	NextVersionNumberFunc func(ctx context.Context, entityID uuid.UUID) (int, error)

	mu    sync.Mutex
	calls struct {
		ListByEntityID []struct {
			EntityID uuid.UUID
			Filter   domain.VersionFilter
		}
		Create            []*domain.EntityVersion
		NextVersionNumber []uuid.UUID
	}
}

func (m *versionRepoMock) ListByEntityID(ctx context.Context, entityID uuid.UUID, filter domain.VersionFilter) ([]*domain.EntityVersion, error) {
	if m.ListByEntityIDFunc == nil {
		panic("versionRepoMock.ListByEntityIDFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.ListByEntityID = append(m.calls.ListByEntityID, struct {
		EntityID uuid.UUID
		Filter   domain.VersionFilter
	}{EntityID: entityID, Filter: filter})
	m.mu.Unlock()
	return m.ListByEntityIDFunc(ctx, entityID, filter)
}

func (m *versionRepoMock) ListByEntityIDCalls() []struct {
	EntityID uuid.UUID
	Filter   domain.VersionFilter
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.ListByEntityID
}

func (m *versionRepoMock) Create(ctx context.Context, v *domain.EntityVersion) (*domain.EntityVersion, error) {
	if m.CreateFunc == nil {
		panic("versionRepoMock.CreateFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.Create = append(m.calls.Create, v)
	m.mu.Unlock()
	return m.CreateFunc(ctx, v)
}

func (m *versionRepoMock) CreateCalls() []*domain.EntityVersion {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Create
}

func (m *versionRepoMock) NextVersionNumber(ctx context.Context, entityID uuid.UUID) (int, error) {
	if m.NextVersionNumberFunc == nil {
		panic("versionRepoMock.NextVersionNumberFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.NextVersionNumber = append(m.calls.NextVersionNumber, entityID)
	m.mu.Unlock()
	return m.NextVersionNumberFunc(ctx, entityID)
}

var _ permissionRepo = &permissionRepoMock{}

type permissionRepoMock struct {
	ListByEntityIDFunc   func(ctx context.Context, entityID uuid.UUID) ([]*domain.EntityPermission, error)
	GetFunc              func(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction) (*domain.EntityPermission, error)
	CreateDefaultsFunc   func(ctx context.Context, entityID uuid.UUID) error
	UpdateTypeFunc       func(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction, t domain.PermissionType) (*domain.EntityPermission, error)
	UpdateRolesFunc      func(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction, delta domain.PermissionRolesDelta) (*domain.EntityPermission, error)
	GetFieldFunc         func(ctx context.Context, permissionFieldID uuid.UUID) (*domain.EntityPermissionField, error)
	AddFieldFunc         func(ctx context.Context, pf *domain.EntityPermissionField) (*domain.EntityPermissionField, error)
	DeleteFieldFunc      func(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction, fieldName string) error
	UpdateFieldRolesFunc func(ctx context.Context, permissionFieldID uuid.UUID, delta domain.PermissionRolesDelta) (*domain.EntityPermissionField, error)

	mu    sync.Mutex
	calls struct {
		ListByEntityID   []uuid.UUID
		CreateDefaults   []uuid.UUID
		UpdateType       []uuid.UUID
		UpdateRoles      []domain.PermissionRolesDelta
		AddField         []*domain.EntityPermissionField
		DeleteField      []string
		UpdateFieldRoles []domain.PermissionRolesDelta
	}
}

func (m *permissionRepoMock) ListByEntityID(ctx context.Context, entityID uuid.UUID) ([]*domain.EntityPermission, error) {
	if m.ListByEntityIDFunc == nil {
		panic("permissionRepoMock.ListByEntityIDFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.ListByEntityID = append(m.calls.ListByEntityID, entityID)
	m.mu.Unlock()
	return m.ListByEntityIDFunc(ctx, entityID)
}

func (m *permissionRepoMock) Get(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction) (*domain.EntityPermission, error) {
	if m.GetFunc == nil {
		panic("permissionRepoMock.GetFunc: method is nil but was called")
	}
	return m.GetFunc(ctx, entityID, action)
}

func (m *permissionRepoMock) CreateDefaults(ctx context.Context, entityID uuid.UUID) error {
	if m.CreateDefaultsFunc == nil {
		panic("permissionRepoMock.CreateDefaultsFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.CreateDefaults = append(m.calls.CreateDefaults, entityID)
	m.mu.Unlock()
	return m.CreateDefaultsFunc(ctx, entityID)
}

func (m *permissionRepoMock) CreateDefaultsCalls() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.CreateDefaults
}

func (m *permissionRepoMock) UpdateType(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction, t domain.PermissionType) (*domain.EntityPermission, error) {
	if m.UpdateTypeFunc == nil {
		panic("permissionRepoMock.UpdateTypeFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.UpdateType = append(m.calls.UpdateType, entityID)
	m.mu.Unlock()
	return m.UpdateTypeFunc(ctx, entityID, action, t)
}

func (m *permissionRepoMock) UpdateTypeCalls() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.UpdateType
}

func (m *permissionRepoMock) UpdateRoles(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction, delta domain.PermissionRolesDelta) (*domain.EntityPermission, error) {
	if m.UpdateRolesFunc == nil {
		panic("permissionRepoMock.UpdateRolesFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.UpdateRoles = append(m.calls.UpdateRoles, delta)
	m.mu.Unlock()
	return m.UpdateRolesFunc(ctx, entityID, action, delta)
}

func (m *permissionRepoMock) UpdateRolesCalls() []domain.PermissionRolesDelta {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.UpdateRoles
}

func (m *permissionRepoMock) GetField(ctx context.Context, permissionFieldID uuid.UUID) (*domain.EntityPermissionField, error) {
	if m.GetFieldFunc == nil {
		panic("permissionRepoMock.GetFieldFunc: method is nil but was called")
	}
	return m.GetFieldFunc(ctx, permissionFieldID)
}

func (m *permissionRepoMock) AddField(ctx context.Context, pf *domain.EntityPermissionField) (*domain.EntityPermissionField, error) {
	if m.AddFieldFunc == nil {
		panic("permissionRepoMock.AddFieldFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.AddField = append(m.calls.AddField, pf)
	m.mu.Unlock()
	return m.AddFieldFunc(ctx, pf)
}

func (m *permissionRepoMock) AddFieldCalls() []*domain.EntityPermissionField {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.AddField
}

func (m *permissionRepoMock) DeleteField(ctx context.Context, entityID uuid.UUID, action domain.PermissionAction, fieldName string) error {
	if m.DeleteFieldFunc == nil {
		panic("permissionRepoMock.DeleteFieldFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.DeleteField = append(m.calls.DeleteField, fieldName)
	m.mu.Unlock()
	return m.DeleteFieldFunc(ctx, entityID, action, fieldName)
}

func (m *permissionRepoMock) DeleteFieldCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.DeleteField
}

func (m *permissionRepoMock) UpdateFieldRoles(ctx context.Context, permissionFieldID uuid.UUID, delta domain.PermissionRolesDelta) (*domain.EntityPermissionField, error) {
	if m.UpdateFieldRolesFunc == nil {
		panic("permissionRepoMock.UpdateFieldRolesFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.UpdateFieldRoles = append(m.calls.UpdateFieldRoles, delta)
	m.mu.Unlock()
	return m.UpdateFieldRolesFunc(ctx, permissionFieldID, delta)
}

func (m *permissionRepoMock) UpdateFieldRolesCalls() []domain.PermissionRolesDelta {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.UpdateFieldRoles
}

var _ userFinder = &userFinderMock{}

type userFinderMock struct {
	FindFunc func(ctx context.Context, filter domain.UserFilter) (*domain.User, error)

	mu    sync.Mutex
	calls struct {
		Find []domain.UserFilter
	}
}

func (m *userFinderMock) Find(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	if m.FindFunc == nil {
		panic("userFinderMock.FindFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.Find = append(m.calls.Find, filter)
	m.mu.Unlock()
	return m.FindFunc(ctx, filter)
}

func (m *userFinderMock) FindCalls() []domain.UserFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Find
}

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	mu    sync.Mutex
	calls struct {
		RunInTx int
	}
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but was called")
	}
	m.mu.Lock()
	m.calls.RunInTx++
	m.mu.Unlock()
	return m.RunInTxFunc(ctx, fn)
}

func (m *txManagerMock) RunInTxCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.RunInTx
}
