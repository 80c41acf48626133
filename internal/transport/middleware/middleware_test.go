package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/forgewell/appforge-backend/pkg/ctxutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChain_AppliesOutermostFirst(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(tag("first"), tag("second"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "handler" {
		t.Errorf("wrong order: %v", order)
	}
}

func TestAuth_AnonymousPassThrough(t *testing.T) {
	t.Parallel()

	validator := &tokenValidatorMock{}
	var sawCaller bool
	h := Auth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawCaller = ctxutil.UserIDFromCtx(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if sawCaller {
		t.Error("anonymous request must not carry a caller")
	}
	if len(validator.ValidateAccessTokenCalls()) != 0 {
		t.Error("validator consulted without a token")
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	t.Parallel()

	validator := &tokenValidatorMock{
		ValidateAccessTokenFunc: func(token string) (uuid.UUID, []uuid.UUID, error) {
			return uuid.Nil, nil, errors.New("bad signature")
		},
	}
	handlerRan := false
	h := Auth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
	if handlerRan {
		t.Error("handler ran with an invalid token")
	}
}

func TestAuth_ValidToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	roleID := uuid.New()
	validator := &tokenValidatorMock{
		ValidateAccessTokenFunc: func(token string) (uuid.UUID, []uuid.UUID, error) {
			if token != "good-token" {
				t.Errorf("token: got %q", token)
			}
			return userID, []uuid.UUID{roleID}, nil
		},
	}

	var gotUser uuid.UUID
	var gotRoles []uuid.UUID
	h := Auth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = ctxutil.UserIDFromCtx(r.Context())
		gotRoles = ctxutil.RoleIDsFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if gotUser != userID {
		t.Errorf("caller: got %s, want %s", gotUser, userID)
	}
	if len(gotRoles) != 1 || gotRoles[0] != roleID {
		t.Errorf("roles: got %v, want [%s]", gotRoles, roleID)
	}
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	t.Parallel()

	var fromCtx string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = ctxutil.RequestIDFromCtx(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if fromCtx == "" {
		t.Fatal("no request id in context")
	}
	if rec.Header().Get("X-Request-Id") != fromCtx {
		t.Errorf("header: got %q, want %q", rec.Header().Get("X-Request-Id"), fromCtx)
	}
}

func TestRequestID_PreservesIncoming(t *testing.T) {
	t.Parallel()

	var fromCtx string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = ctxutil.RequestIDFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "client-id-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if fromCtx != "client-id-123" {
		t.Errorf("request id: got %q, want client-id-123", fromCtx)
	}
}

func TestRecovery_TurnsPanicInto500(t *testing.T) {
	t.Parallel()

	h := Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
}
