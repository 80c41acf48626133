// Package ctxutil carries the per-request identity and correlation values
// on the context under unexported keys.
package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type (
	userIDKey    struct{}
	roleIDsKey   struct{}
	requestIDKey struct{}
)

// WithUserID stores the caller's user ID in the context.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFromCtx extracts the caller's user ID. The second return is false
// when the value is missing, the nil UUID, or the wrong type.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithRoleIDs stores the caller's role IDs in the context.
func WithRoleIDs(ctx context.Context, ids []uuid.UUID) context.Context {
	return context.WithValue(ctx, roleIDsKey{}, ids)
}

// RoleIDsFromCtx extracts the caller's role IDs, nil when absent.
func RoleIDsFromCtx(ctx context.Context) []uuid.UUID {
	ids, _ := ctx.Value(roleIDsKey{}).([]uuid.UUID)
	return ids
}

// WithRequestID stores the request correlation ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromCtx extracts the request correlation ID, empty when absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
