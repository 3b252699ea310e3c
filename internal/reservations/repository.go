package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mensahub/mensahub/internal/shared"
)

// Repository defines persistence operations for reservations.
type Repository interface {
	Create(ctx context.Context, userID, menuID int64) (*Reservation, error)
	ListForUser(ctx context.Context, userID int64) ([]Detail, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var _ Repository = (*PGRepository)(nil)

// Create books a menu for a user. The foreign key settles a missing menu and
// the (user_id, menu_id) unique constraint settles a duplicate booking, so
// concurrent requests cannot produce two rows.
func (r *PGRepository) Create(ctx context.Context, userID, menuID int64) (*Reservation, error) {
	res := Reservation{UserID: userID, MenuID: menuID, Status: StatusConfirmed, CreatedAt: time.Now().UTC()}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reservations (user_id, menu_id, status, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		userID, menuID, res.Status, res.CreatedAt,
	).Scan(&res.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, shared.ErrConflict
			case "23503":
				return nil, shared.ErrNotFound
			}
		}
		return nil, err
	}
	return &res, nil
}

// ListForUser returns the user's reservations, newest first, with the menu
// date and meal type joined in.
func (r *PGRepository) ListForUser(ctx context.Context, userID int64) ([]Detail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT res.id, res.user_id, res.menu_id, res.status, res.created_at, m.date, m.meal_type
		 FROM reservations res
		 JOIN menus m ON m.id = res.menu_id
		 WHERE res.user_id = $1
		 ORDER BY res.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.UserID, &d.MenuID, &d.Status, &d.CreatedAt, &d.MenuDate, &d.MealType); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
