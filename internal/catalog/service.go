package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/mensahub/mensahub/internal/shared"
)

// Service enforces the catalog business rules on top of the repository.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListDishes returns all dishes ordered by name.
func (s *Service) ListDishes(ctx context.Context) ([]Dish, error) {
	return s.repo.ListDishes(ctx)
}

// GetDish returns a single dish.
func (s *Service) GetDish(ctx context.Context, id int64) (*Dish, error) {
	if id <= 0 {
		return nil, shared.ErrNotFound
	}
	return s.repo.GetDish(ctx, id)
}

// CreateDish registers a new dish. The name is required; uniqueness is settled
// by the database constraint.
func (s *Service) CreateDish(ctx context.Context, name, description, nutritionalInfo string) (*Dish, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrValidation
	}
	return s.repo.CreateDish(ctx, Dish{
		Name:            name,
		Description:     strings.TrimSpace(description),
		NutritionalInfo: strings.TrimSpace(nutritionalInfo),
	})
}

// UpdateDish rewrites a dish's fields. An empty resulting name is rejected.
func (s *Service) UpdateDish(ctx context.Context, id int64, name, description, nutritionalInfo string) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrValidation
	}
	return s.repo.UpdateDish(ctx, id, Dish{
		Name:            name,
		Description:     strings.TrimSpace(description),
		NutritionalInfo: strings.TrimSpace(nutritionalInfo),
	})
}

// DeleteDish removes a dish. A dish referenced by any menu cannot be deleted.
func (s *Service) DeleteDish(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	return s.repo.DeleteDish(ctx, id)
}

// ListMenus returns all menus, newest date first.
func (s *Service) ListMenus(ctx context.Context) ([]Menu, error) {
	return s.repo.ListMenus(ctx)
}

// GetMenu returns a single menu with its dishes.
func (s *Service) GetMenu(ctx context.Context, id int64) (*Menu, error) {
	if id <= 0 {
		return nil, shared.ErrNotFound
	}
	return s.repo.GetMenu(ctx, id)
}

// MenusOn returns the menus published for a calendar date, lunch before dinner.
func (s *Service) MenusOn(ctx context.Context, date time.Time) ([]Menu, error) {
	return s.repo.MenusOnDate(ctx, date)
}

// CreateMenu creates a menu from validated input. Date, meal type and at
// least one known dish are required; the menu and its associations are
// written in one transaction.
func (s *Service) CreateMenu(ctx context.Context, input MenuInput) (*Menu, error) {
	if err := validateMenuInput(&input); err != nil {
		return nil, err
	}
	return s.repo.CreateMenu(ctx, input)
}

// UpdateMenu replaces the menu's fields and its entire dish set.
func (s *Service) UpdateMenu(ctx context.Context, id int64, input MenuInput) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := validateMenuInput(&input); err != nil {
		return err
	}
	return s.repo.UpdateMenu(ctx, id, input)
}

// DeleteMenu removes a menu and its dish associations.
func (s *Service) DeleteMenu(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	return s.repo.DeleteMenu(ctx, id)
}

func validateMenuInput(input *MenuInput) error {
	if input.Date.IsZero() {
		return shared.ErrValidation
	}
	if !input.MealType.validMember() {
		return shared.ErrValidation
	}
	input.DishIDs = dedupeIDs(input.DishIDs)
	if len(input.DishIDs) == 0 {
		return shared.ErrValidation
	}
	return nil
}

func (m MealType) validMember() bool {
	return m == MealLunch || m == MealDinner
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
