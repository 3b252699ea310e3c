package users

import (
	"context"
	"strings"

	"github.com/mensahub/mensahub/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user User) (*User, error)
	UpdateDietaryRestrictions(ctx context.Context, id int64, restrictions string) error
}

// Service handles user profile logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateDietaryRestrictions saves the user's free-text dietary restrictions.
func (s *Service) UpdateDietaryRestrictions(ctx context.Context, id int64, restrictions string) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	return s.repo.UpdateDietaryRestrictions(ctx, id, strings.TrimSpace(restrictions))
}
