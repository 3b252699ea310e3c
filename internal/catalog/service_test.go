package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensahub/mensahub/internal/shared"
)

type mockRepository struct {
	dishes     map[int64]Dish
	menus      map[int64]Menu
	nextDishID int64
	nextMenuID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		dishes:     make(map[int64]Dish),
		menus:      make(map[int64]Menu),
		nextDishID: 1,
		nextMenuID: 1,
	}
}

func (m *mockRepository) ListDishes(ctx context.Context) ([]Dish, error) {
	out := make([]Dish, 0, len(m.dishes))
	for _, d := range m.dishes {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockRepository) GetDish(ctx context.Context, id int64) (*Dish, error) {
	d, ok := m.dishes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &d, nil
}

func (m *mockRepository) CreateDish(ctx context.Context, dish Dish) (*Dish, error) {
	for _, existing := range m.dishes {
		if strings.EqualFold(existing.Name, dish.Name) {
			return nil, shared.ErrConflict
		}
	}
	dish.ID = m.nextDishID
	m.nextDishID++
	m.dishes[dish.ID] = dish
	return &dish, nil
}

func (m *mockRepository) UpdateDish(ctx context.Context, id int64, dish Dish) error {
	if _, ok := m.dishes[id]; !ok {
		return shared.ErrNotFound
	}
	dish.ID = id
	m.dishes[id] = dish
	return nil
}

func (m *mockRepository) DeleteDish(ctx context.Context, id int64) error {
	if _, ok := m.dishes[id]; !ok {
		return shared.ErrNotFound
	}
	for _, menu := range m.menus {
		for _, d := range menu.Dishes {
			if d.ID == id {
				return shared.ErrConflict
			}
		}
	}
	delete(m.dishes, id)
	return nil
}

func (m *mockRepository) ListMenus(ctx context.Context) ([]Menu, error) {
	out := make([]Menu, 0, len(m.menus))
	for _, menu := range m.menus {
		out = append(out, menu)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *mockRepository) GetMenu(ctx context.Context, id int64) (*Menu, error) {
	menu, ok := m.menus[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &menu, nil
}

func (m *mockRepository) MenusOnDate(ctx context.Context, date time.Time) ([]Menu, error) {
	var out []Menu
	for _, menu := range m.menus {
		if menu.Date.Format("2006-01-02") == date.Format("2006-01-02") {
			out = append(out, menu)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MealType < out[j].MealType })
	return out, nil
}

func (m *mockRepository) resolveDishes(ids []int64) ([]Dish, error) {
	dishes := make([]Dish, 0, len(ids))
	for _, id := range ids {
		d, ok := m.dishes[id]
		if !ok {
			return nil, shared.ErrValidation
		}
		dishes = append(dishes, d)
	}
	return dishes, nil
}

func (m *mockRepository) CreateMenu(ctx context.Context, input MenuInput) (*Menu, error) {
	for _, existing := range m.menus {
		if existing.Date.Equal(input.Date) && existing.MealType == input.MealType {
			return nil, shared.ErrConflict
		}
	}
	dishes, err := m.resolveDishes(input.DishIDs)
	if err != nil {
		return nil, err
	}
	menu := Menu{ID: m.nextMenuID, Date: input.Date, MealType: input.MealType, Dishes: dishes}
	m.nextMenuID++
	m.menus[menu.ID] = menu
	return &menu, nil
}

func (m *mockRepository) UpdateMenu(ctx context.Context, id int64, input MenuInput) error {
	if _, ok := m.menus[id]; !ok {
		return shared.ErrNotFound
	}
	for otherID, existing := range m.menus {
		if otherID != id && existing.Date.Equal(input.Date) && existing.MealType == input.MealType {
			return shared.ErrConflict
		}
	}
	dishes, err := m.resolveDishes(input.DishIDs)
	if err != nil {
		return err
	}
	m.menus[id] = Menu{ID: id, Date: input.Date, MealType: input.MealType, Dishes: dishes}
	return nil
}

func (m *mockRepository) DeleteMenu(ctx context.Context, id int64) error {
	if _, ok := m.menus[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.menus, id)
	return nil
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	return NewService(repo), repo
}

func seedDish(t *testing.T, svc *Service, name string) *Dish {
	t.Helper()
	dish, err := svc.CreateDish(context.Background(), name, "", "")
	require.NoError(t, err)
	return dish
}

func TestCreateDish(t *testing.T) {
	svc, _ := newTestService()

	dish, err := svc.CreateDish(context.Background(), "  Lentil Soup  ", " hearty ", "320 kcal")
	require.NoError(t, err)
	require.NotNil(t, dish)

	assert.Equal(t, int64(1), dish.ID)
	assert.Equal(t, "Lentil Soup", dish.Name)
	assert.Equal(t, "hearty", dish.Description)
	assert.Equal(t, "320 kcal", dish.NutritionalInfo)
}

func TestCreateDishEmptyName(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateDish(context.Background(), "   ", "desc", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestCreateDishDuplicateName(t *testing.T) {
	svc, _ := newTestService()
	seedDish(t, svc, "Paella")

	_, err := svc.CreateDish(context.Background(), "Paella", "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestUpdateDish(t *testing.T) {
	svc, _ := newTestService()
	dish := seedDish(t, svc, "Paella")

	err := svc.UpdateDish(context.Background(), dish.ID, "Seafood Paella", "with mussels", "540 kcal")
	require.NoError(t, err)

	updated, err := svc.GetDish(context.Background(), dish.ID)
	require.NoError(t, err)
	assert.Equal(t, "Seafood Paella", updated.Name)
	assert.Equal(t, "with mussels", updated.Description)
}

func TestUpdateDishNotFound(t *testing.T) {
	svc, _ := newTestService()

	err := svc.UpdateDish(context.Background(), 99, "Ghost", "", "")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestDeleteDish(t *testing.T) {
	svc, _ := newTestService()
	dish := seedDish(t, svc, "Paella")

	require.NoError(t, svc.DeleteDish(context.Background(), dish.ID))

	_, err := svc.GetDish(context.Background(), dish.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestDeleteDishInMenu(t *testing.T) {
	svc, _ := newTestService()
	dish := seedDish(t, svc, "Paella")

	_, err := svc.CreateMenu(context.Background(), MenuInput{
		Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MealType: MealLunch,
		DishIDs:  []int64{dish.ID},
	})
	require.NoError(t, err)

	err = svc.DeleteDish(context.Background(), dish.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))

	// The dish stays available after the refused delete.
	_, err = svc.GetDish(context.Background(), dish.ID)
	require.NoError(t, err)
}

func TestCreateMenu(t *testing.T) {
	svc, _ := newTestService()
	first := seedDish(t, svc, "Paella")
	second := seedDish(t, svc, "Lentil Soup")

	menu, err := svc.CreateMenu(context.Background(), MenuInput{
		Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MealType: MealLunch,
		DishIDs:  []int64{first.ID, second.ID, first.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, menu)
	assert.Len(t, menu.Dishes, 2)
	assert.Equal(t, MealLunch, menu.MealType)
}

func TestCreateMenuNoDishes(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateMenu(context.Background(), MenuInput{
		Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MealType: MealLunch,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestCreateMenuUnknownDish(t *testing.T) {
	svc, _ := newTestService()
	dish := seedDish(t, svc, "Paella")

	_, err := svc.CreateMenu(context.Background(), MenuInput{
		Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MealType: MealLunch,
		DishIDs:  []int64{dish.ID, 99},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestCreateMenuInvalidMealType(t *testing.T) {
	svc, _ := newTestService()
	dish := seedDish(t, svc, "Paella")

	_, err := svc.CreateMenu(context.Background(), MenuInput{
		Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MealType: MealType("Brunch"),
		DishIDs:  []int64{dish.ID},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestCreateMenuDuplicateSlot(t *testing.T) {
	svc, _ := newTestService()
	dish := seedDish(t, svc, "Paella")
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateMenu(context.Background(), MenuInput{Date: date, MealType: MealLunch, DishIDs: []int64{dish.ID}})
	require.NoError(t, err)

	_, err = svc.CreateMenu(context.Background(), MenuInput{Date: date, MealType: MealLunch, DishIDs: []int64{dish.ID}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))

	// Same date with the other meal type is allowed.
	_, err = svc.CreateMenu(context.Background(), MenuInput{Date: date, MealType: MealDinner, DishIDs: []int64{dish.ID}})
	require.NoError(t, err)
}

func TestUpdateMenuReplacesDishSet(t *testing.T) {
	svc, _ := newTestService()
	first := seedDish(t, svc, "Paella")
	second := seedDish(t, svc, "Lentil Soup")
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	menu, err := svc.CreateMenu(context.Background(), MenuInput{Date: date, MealType: MealLunch, DishIDs: []int64{first.ID}})
	require.NoError(t, err)

	err = svc.UpdateMenu(context.Background(), menu.ID, MenuInput{Date: date, MealType: MealLunch, DishIDs: []int64{second.ID}})
	require.NoError(t, err)

	updated, err := svc.GetMenu(context.Background(), menu.ID)
	require.NoError(t, err)
	require.Len(t, updated.Dishes, 1)
	assert.Equal(t, second.ID, updated.Dishes[0].ID)
}

func TestUpdateMenuEmptyDishSet(t *testing.T) {
	svc, _ := newTestService()
	dish := seedDish(t, svc, "Paella")
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	menu, err := svc.CreateMenu(context.Background(), MenuInput{Date: date, MealType: MealLunch, DishIDs: []int64{dish.ID}})
	require.NoError(t, err)

	err = svc.UpdateMenu(context.Background(), menu.ID, MenuInput{Date: date, MealType: MealLunch})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestMenusOn(t *testing.T) {
	svc, _ := newTestService()
	dish := seedDish(t, svc, "Paella")
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateMenu(context.Background(), MenuInput{Date: today, MealType: MealDinner, DishIDs: []int64{dish.ID}})
	require.NoError(t, err)
	_, err = svc.CreateMenu(context.Background(), MenuInput{Date: today, MealType: MealLunch, DishIDs: []int64{dish.ID}})
	require.NoError(t, err)
	_, err = svc.CreateMenu(context.Background(), MenuInput{Date: today.AddDate(0, 0, 1), MealType: MealLunch, DishIDs: []int64{dish.ID}})
	require.NoError(t, err)

	menus, err := svc.MenusOn(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, menus, 2)
}

func TestDeleteMenu(t *testing.T) {
	svc, _ := newTestService()
	dish := seedDish(t, svc, "Paella")

	menu, err := svc.CreateMenu(context.Background(), MenuInput{
		Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MealType: MealLunch,
		DishIDs:  []int64{dish.ID},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMenu(context.Background(), menu.ID))

	_, err = svc.GetMenu(context.Background(), menu.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	// Deleting the menu frees its dishes for removal.
	require.NoError(t, svc.DeleteDish(context.Background(), dish.ID))
}
