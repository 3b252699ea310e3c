package reservations

import (
	"context"

	"github.com/mensahub/mensahub/internal/shared"
)

// Service handles reservation business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Reserve books a menu for the user. Missing menus surface as
// shared.ErrNotFound and repeat bookings as shared.ErrConflict.
func (s *Service) Reserve(ctx context.Context, userID, menuID int64) (*Reservation, error) {
	if userID <= 0 || menuID <= 0 {
		return nil, shared.ErrNotFound
	}
	return s.repo.Create(ctx, userID, menuID)
}

// ListForUser returns all reservations made by the user, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Detail, error) {
	return s.repo.ListForUser(ctx, userID)
}
