package loader

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/internal/adapter/postgres/field"
	"github.com/forgewell/appforge-backend/internal/domain"
)

type fieldRepoMock struct {
	mu      sync.Mutex
	calls   [][]uuid.UUID
	rows    []field.FieldWithEntityID
	listErr error
}

func (m *fieldRepoMock) ListByEntityIDs(ctx context.Context, entityIDs []uuid.UUID) ([]field.FieldWithEntityID, error) {
	m.mu.Lock()
	m.calls = append(m.calls, entityIDs)
	m.mu.Unlock()
	return m.rows, m.listErr
}

type permissionRepoMock struct {
	rows []*domain.EntityPermission
}

func (m *permissionRepoMock) ListByEntityIDs(ctx context.Context, entityIDs []uuid.UUID) ([]*domain.EntityPermission, error) {
	return m.rows, nil
}

type userRepoMock struct {
	users []*domain.User
}

func (m *userRepoMock) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	return m.users, nil
}

func TestFieldsByEntityID_BatchesAndGroups(t *testing.T) {
	t.Parallel()

	entityA := uuid.New()
	entityB := uuid.New()
	entityC := uuid.New()

	repo := &fieldRepoMock{
		rows: []field.FieldWithEntityID{
			{EntityID: entityA, EntityField: domain.EntityField{ID: uuid.New(), Name: "total"}},
			{EntityID: entityA, EntityField: domain.EntityField{ID: uuid.New(), Name: "customer"}},
			{EntityID: entityB, EntityField: domain.EntityField{ID: uuid.New(), Name: "title"}},
		},
	}
	loaders := NewLoaders(&Repos{Field: repo, Permission: &permissionRepoMock{}, User: &userRepoMock{}})
	ctx := context.Background()

	thunkA := loaders.FieldsByEntityID.Load(ctx, entityA)
	thunkB := loaders.FieldsByEntityID.Load(ctx, entityB)
	thunkC := loaders.FieldsByEntityID.Load(ctx, entityC)

	fieldsA, err := thunkA()
	if err != nil {
		t.Fatalf("entity A: %v", err)
	}
	fieldsB, err := thunkB()
	if err != nil {
		t.Fatalf("entity B: %v", err)
	}
	fieldsC, err := thunkC()
	if err != nil {
		t.Fatalf("entity C: %v", err)
	}

	if len(fieldsA) != 2 {
		t.Errorf("entity A fields: got %d, want 2", len(fieldsA))
	}
	if len(fieldsB) != 1 || fieldsB[0].Name != "title" {
		t.Errorf("entity B fields: got %v", fieldsB)
	}
	if fieldsC == nil || len(fieldsC) != 0 {
		t.Errorf("entity without fields must resolve to an empty slice, got %v", fieldsC)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.calls) != 1 {
		t.Fatalf("storage calls: got %d, want 1 batched call", len(repo.calls))
	}
	if len(repo.calls[0]) != 3 {
		t.Errorf("batch keys: got %d, want 3", len(repo.calls[0]))
	}
}

func TestFieldsByEntityID_ErrorReachesEveryKey(t *testing.T) {
	t.Parallel()

	boom := errors.New("query timeout")
	repo := &fieldRepoMock{listErr: boom}
	loaders := NewLoaders(&Repos{Field: repo, Permission: &permissionRepoMock{}, User: &userRepoMock{}})
	ctx := context.Background()

	thunkA := loaders.FieldsByEntityID.Load(ctx, uuid.New())
	thunkB := loaders.FieldsByEntityID.Load(ctx, uuid.New())

	if _, err := thunkA(); !errors.Is(err, boom) {
		t.Errorf("entity A: got %v, want batch error", err)
	}
	if _, err := thunkB(); !errors.Is(err, boom) {
		t.Errorf("entity B: got %v, want batch error", err)
	}
}

func TestUserByID_MissingUserIsNil(t *testing.T) {
	t.Parallel()

	known := uuid.New()
	repo := &userRepoMock{users: []*domain.User{{ID: known, Email: "a@b.c"}}}
	loaders := NewLoaders(&Repos{Field: &fieldRepoMock{}, Permission: &permissionRepoMock{}, User: repo})
	ctx := context.Background()

	thunkKnown := loaders.UserByID.Load(ctx, known)
	thunkGhost := loaders.UserByID.Load(ctx, uuid.New())

	u, err := thunkKnown()
	if err != nil || u == nil || u.ID != known {
		t.Errorf("known user: got (%v, %v)", u, err)
	}
	ghost, err := thunkGhost()
	if err != nil || ghost != nil {
		t.Errorf("unknown user: got (%v, %v), want (nil, nil)", ghost, err)
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) != nil {
		t.Error("empty context should carry no loaders")
	}

	l := NewLoaders(&Repos{Field: &fieldRepoMock{}, Permission: &permissionRepoMock{}, User: &userRepoMock{}})
	ctx := WithLoaders(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("loaders not round-tripped through the context")
	}
}
