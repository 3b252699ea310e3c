package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mensahub/mensahub/internal/shared"
	"github.com/mensahub/mensahub/internal/users"
)

// UserStore is the slice of the users repository the auth workflow needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	Create(ctx context.Context, user users.User) (*users.User, error)
}

// SessionStore persists login session records for auditing.
type SessionStore interface {
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// Service wraps registration and credential checks.
type Service struct {
	users    UserStore
	sessions SessionStore
}

// NewService constructs a new Service.
func NewService(users UserStore, sessions SessionStore) *Service {
	return &Service{users: users, sessions: sessions}
}

// Register creates a new account with the default Student role. A duplicate
// email fails with shared.ErrConflict; the pre-check gives a friendly error on
// the common path while the unique constraint settles concurrent races.
func (s *Service) Register(ctx context.Context, fullName, email, password string) (*users.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" || password == "" {
		return nil, shared.ErrValidation
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, shared.ErrConflict
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.users.Create(ctx, users.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         users.RoleStudent,
	})
}

// Authenticate validates email/password credentials. Unknown email and wrong
// password are indistinguishable to the caller; storage failures pass through
// untouched so callers can log them.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterSession records a login session in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.sessions.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record. Removing an already-removed session
// is a no-op, which keeps logout idempotent.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.sessions.DeleteSession(ctx, id)
}
