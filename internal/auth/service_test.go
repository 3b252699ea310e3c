package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mensahub/mensahub/internal/shared"
	"github.com/mensahub/mensahub/internal/users"
)

type mockUserStore struct {
	byEmail map[string]*users.User
	nextID  int64

	findErr   error
	createErr error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{byEmail: make(map[string]*users.User), nextID: 1}
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	user, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (m *mockUserStore) Create(ctx context.Context, user users.User) (*users.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	key := strings.ToLower(user.Email)
	if _, ok := m.byEmail[key]; ok {
		return nil, shared.ErrConflict
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now().UTC()
	m.byEmail[key] = &user
	return &user, nil
}

type mockSessionStore struct {
	created map[string]int64
	deleted []string
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{created: make(map[string]int64)}
}

func (m *mockSessionStore) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	m.created[id] = userID
	return nil
}

func (m *mockSessionStore) DeleteSession(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func newTestService() (*Service, *mockUserStore, *mockSessionStore) {
	userStore := newMockUserStore()
	sessionStore := newMockSessionStore()
	return NewService(userStore, sessionStore), userStore, sessionStore
}

func TestRegister(t *testing.T) {
	svc, store, _ := newTestService()

	user, err := svc.Register(context.Background(), "  Ada Lovelace ", " ada@example.edu ", "s3cret-pass")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "Ada Lovelace", user.FullName)
	assert.Equal(t, "ada@example.edu", user.Email)
	assert.Equal(t, users.RoleStudent, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
	assert.Len(t, store.byEmail, 1)
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _, _ := newTestService()

	cases := []struct {
		name, fullName, email, password string
	}{
		{"no name", "  ", "ada@example.edu", "s3cret-pass"},
		{"no email", "Ada Lovelace", "", "s3cret-pass"},
		{"no password", "Ada Lovelace", "ada@example.edu", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.fullName, tc.email, tc.password)
			assert.True(t, errors.Is(err, shared.ErrValidation))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), "Ada Lovelace", "ada@example.edu", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Other Person", "ada@example.edu", "different-pass")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService()

	registered, err := svc.Register(context.Background(), "Ada Lovelace", "ada@example.edu", "s3cret-pass")
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "ada@example.edu", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), "Ada Lovelace", "ada@example.edu", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "ada@example.edu", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Authenticate(context.Background(), "nobody@example.edu", "whatever")
	require.Error(t, err)
	// Unknown email and wrong password map to the same error.
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestAuthenticateStorageFailure(t *testing.T) {
	svc, store, _ := newTestService()
	store.findErr = errors.New("connection refused")

	_, err := svc.Authenticate(context.Background(), "ada@example.edu", "s3cret-pass")
	require.Error(t, err)
	// A storage failure is not a credential problem and must stay recoverable.
	assert.False(t, errors.Is(err, shared.ErrInvalidCredentials))
	assert.ErrorIs(t, err, store.findErr)
}

func TestSessionAudit(t *testing.T) {
	svc, _, sessions := newTestService()

	expires := time.Now().Add(2 * time.Hour)
	require.NoError(t, svc.RegisterSession(context.Background(), "sess-1", 7, expires, "198.51.100.4", "test-agent"))
	assert.Equal(t, int64(7), sessions.created["sess-1"])

	require.NoError(t, svc.RemoveSession(context.Background(), "sess-1"))
	require.NoError(t, svc.RemoveSession(context.Background(), "sess-1"))
	assert.Equal(t, []string{"sess-1", "sess-1"}, sessions.deleted)
}
