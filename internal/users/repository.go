package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mensahub/mensahub/internal/shared"
)

// Repository provides PostgreSQL backed persistence for user accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, full_name, email, password_hash, role, is_scholarship, credits::text, dietary_restrictions, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.IsScholarship, &u.Credits, &u.DietaryRestrictions, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// FindByEmail fetches a user by email, exact match.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create inserts a new user. A concurrent duplicate email loses against the
// unique constraint and is reported as shared.ErrConflict.
func (r *Repository) Create(ctx context.Context, user User) (*User, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (full_name, email, password_hash, role, is_scholarship, credits, dietary_restrictions, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $7)
		 RETURNING id`,
		user.FullName, user.Email, user.PasswordHash, user.Role, user.IsScholarship, user.DietaryRestrictions, now,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrConflict
		}
		return nil, err
	}
	user.Credits = "0.00"
	user.CreatedAt = now
	user.UpdatedAt = now
	return &user, nil
}

// UpdateDietaryRestrictions stores the free-text restrictions for a user.
func (r *Repository) UpdateDietaryRestrictions(ctx context.Context, id int64, restrictions string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET dietary_restrictions = $1, updated_at = $2 WHERE id = $3`,
		restrictions, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
