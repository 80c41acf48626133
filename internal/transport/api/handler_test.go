package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/forgewell/appforge-backend/internal/argtree"
	"github.com/forgewell/appforge-backend/internal/domain"
)

type dispatcherMock struct {
	DispatchFunc func(ctx context.Context, name string, args *argtree.Node) (any, error)
}

func (m *dispatcherMock) Dispatch(ctx context.Context, name string, args *argtree.Node) (any, error) {
	if m.DispatchFunc == nil {
		panic("dispatcherMock.DispatchFunc: method is nil but was called")
	}
	return m.DispatchFunc(ctx, name, args)
}

func newTestHandler(d dispatcher) *Handler {
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), d, 1<<20)
}

func do(t *testing.T, h *Handler, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/api", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return resp.Error
}

func TestHandler_PostOnly(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&dispatcherMock{})
	rec := do(t, h, http.MethodGet, "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Errorf("Allow header: got %q", rec.Header().Get("Allow"))
	}
}

func TestHandler_MalformedBody(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&dispatcherMock{})
	rec := do(t, h, http.MethodPost, "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "VALIDATION" {
		t.Errorf("code: got %q, want VALIDATION", body.Code)
	}
}

func TestHandler_BodyTooLarge(t *testing.T) {
	t.Parallel()

	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), &dispatcherMock{}, 32)
	big := fmt.Sprintf(`{"operation":"entities","arguments":{"pad":%q}}`, strings.Repeat("x", 128))
	rec := do(t, h, http.MethodPost, big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status: got %d, want 413", rec.Code)
	}
}

func TestHandler_MissingOperation(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&dispatcherMock{})
	rec := do(t, h, http.MethodPost, `{"arguments":{}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
	if body := decodeError(t, rec); body.Message != "operation is required" {
		t.Errorf("message: got %q", body.Message)
	}
}

func TestHandler_NonObjectArguments(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&dispatcherMock{})
	rec := do(t, h, http.MethodPost, `{"operation":"entities","arguments":[1,2]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
	if body := decodeError(t, rec); body.Message != "arguments must be an object" {
		t.Errorf("message: got %q", body.Message)
	}
}

func TestHandler_DispatchSuccess(t *testing.T) {
	t.Parallel()

	d := &dispatcherMock{
		DispatchFunc: func(ctx context.Context, name string, args *argtree.Node) (any, error) {
			if name != "entity" {
				t.Errorf("operation: got %q", name)
			}
			id, err := args.StringAt("where.id")
			if err != nil || id != "abc" {
				t.Errorf("arguments not forwarded: (%q, %v)", id, err)
			}
			return map[string]string{"name": "orders"}, nil
		},
	}
	h := newTestHandler(d)

	rec := do(t, h, http.MethodPost, `{"operation":"entity","arguments":{"where":{"id":"abc"}}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data["name"] != "orders" {
		t.Errorf("data: got %v", resp.Data)
	}
}

func TestHandler_OmittedArgumentsBecomeEmptyObject(t *testing.T) {
	t.Parallel()

	d := &dispatcherMock{
		DispatchFunc: func(ctx context.Context, name string, args *argtree.Node) (any, error) {
			if args == nil || args.Kind() != argtree.KindObject {
				t.Errorf("args: got %v, want empty object", args)
			}
			return nil, nil
		},
	}
	h := newTestHandler(d)

	rec := do(t, h, http.MethodPost, `{"operation":"entities"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", fmt.Errorf("entity: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"already exists", fmt.Errorf("entity: %w", domain.ErrAlreadyExists), http.StatusConflict, "ALREADY_EXISTS"},
		{"validation", domain.NewValidationError("name", "required"), http.StatusBadRequest, "VALIDATION"},
		{"unauthenticated", domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"forbidden", fmt.Errorf("authorize: %w", domain.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
		{"resolution", fmt.Errorf("authorize: %w", domain.ErrResolution), http.StatusBadRequest, "RESOLUTION"},
		{"conflict", domain.NewConflictError("entity is locked by another user"), http.StatusConflict, "CONFLICT"},
		{"internal", errors.New("pool exhausted"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandler(&dispatcherMock{
				DispatchFunc: func(ctx context.Context, name string, args *argtree.Node) (any, error) {
					return nil, tt.err
				},
			})

			rec := do(t, h, http.MethodPost, `{"operation":"op","arguments":{}}`)
			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := decodeError(t, rec); body.Code != tt.wantCode {
				t.Errorf("code: got %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestHandler_ConflictMessageIsExposed(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&dispatcherMock{
		DispatchFunc: func(ctx context.Context, name string, args *argtree.Node) (any, error) {
			return nil, domain.NewConflictError(domain.MsgRelatedNamesWithID)
		},
	})

	rec := do(t, h, http.MethodPost, `{"operation":"createEntityField","arguments":{}}`)
	if body := decodeError(t, rec); body.Message != domain.MsgRelatedNamesWithID {
		t.Errorf("message: got %q, want the conflict literal", body.Message)
	}
}

func TestHandler_ValidationFieldsAreExposed(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&dispatcherMock{
		DispatchFunc: func(ctx context.Context, name string, args *argtree.Node) (any, error) {
			return nil, &domain.ValidationError{Errors: []domain.FieldError{
				{Field: "name", Message: "required"},
				{Field: "display_name", Message: "required"},
			}}
		},
	})

	rec := do(t, h, http.MethodPost, `{"operation":"createEntity","arguments":{}}`)
	body := decodeError(t, rec)
	if len(body.Fields) != 2 {
		t.Fatalf("fields: got %d, want 2", len(body.Fields))
	}
	if body.Fields[0].Field != "name" || body.Fields[1].Field != "display_name" {
		t.Errorf("fields: got %+v", body.Fields)
	}
}

func TestHandler_InternalErrorIsGeneric(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&dispatcherMock{
		DispatchFunc: func(ctx context.Context, name string, args *argtree.Node) (any, error) {
			return nil, errors.New("dsn=postgres://secret")
		},
	})

	rec := do(t, h, http.MethodPost, `{"operation":"op","arguments":{}}`)
	body := decodeError(t, rec)
	if body.Message != "internal error" {
		t.Errorf("internal details leaked: %q", body.Message)
	}
}
