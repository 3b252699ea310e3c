package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensahub/mensahub/internal/shared"
)

type mockRepository struct {
	byID map[int64]*User
}

func newMockRepository() *mockRepository {
	return &mockRepository{byID: make(map[int64]*User)}
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, user := range m.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) Create(ctx context.Context, user User) (*User, error) {
	user.ID = int64(len(m.byID) + 1)
	m.byID[user.ID] = &user
	return &user, nil
}

func (m *mockRepository) UpdateDietaryRestrictions(ctx context.Context, id int64, restrictions string) error {
	user, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	user.DietaryRestrictions = restrictions
	return nil
}

func TestRoleValid(t *testing.T) {
	for _, role := range AllRoles() {
		assert.True(t, role.Valid(), string(role))
	}
	assert.False(t, Role("Janitor").Valid())
	assert.False(t, Role("").Valid())
}

func TestGet(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	repo.byID[1] = &User{ID: 1, FullName: "Ada Lovelace", Role: RoleStudent}

	user, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.FullName)

	_, err = svc.Get(context.Background(), 2)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestUpdateDietaryRestrictions(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	repo.byID[1] = &User{ID: 1, FullName: "Ada Lovelace"}

	require.NoError(t, svc.UpdateDietaryRestrictions(context.Background(), 1, "  vegetarian, no nuts  "))
	assert.Equal(t, "vegetarian, no nuts", repo.byID[1].DietaryRestrictions)

	// Clearing the field is a valid update.
	require.NoError(t, svc.UpdateDietaryRestrictions(context.Background(), 1, ""))
	assert.Equal(t, "", repo.byID[1].DietaryRestrictions)
}

func TestUpdateDietaryRestrictionsUnknownUser(t *testing.T) {
	svc := NewService(newMockRepository())

	err := svc.UpdateDietaryRestrictions(context.Background(), 42, "vegan")
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	err = svc.UpdateDietaryRestrictions(context.Background(), 0, "vegan")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
