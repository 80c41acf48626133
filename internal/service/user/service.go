// Package user provides lookup over external user identities. Users are not
// managed here; entities reference them only through the edit lock.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/forgewell/appforge-backend/internal/domain"
)

type userRepo interface {
	Find(ctx context.Context, filter domain.UserFilter) (*domain.User, error)
}

// Service provides user lookup.
type Service struct {
	users userRepo
	log   *slog.Logger
}

// NewService creates a new User service.
func NewService(log *slog.Logger, users userRepo) *Service {
	return &Service{
		users: users,
		log:   log.With("service", "user"),
	}
}

// FindUser returns the user matching the filter, or nil when none matches.
func (s *Service) FindUser(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	if filter.IsEmpty() {
		return nil, domain.NewValidationError("filter", "id or email required")
	}

	u, err := s.users.Find(ctx, filter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
