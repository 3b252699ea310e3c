package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mensahub/mensahub/internal/platform/db"
	"github.com/mensahub/mensahub/internal/shared"
)

// Repository defines persistence operations for dishes and menus.
type Repository interface {
	ListDishes(ctx context.Context) ([]Dish, error)
	GetDish(ctx context.Context, id int64) (*Dish, error)
	CreateDish(ctx context.Context, dish Dish) (*Dish, error)
	UpdateDish(ctx context.Context, id int64, dish Dish) error
	DeleteDish(ctx context.Context, id int64) error

	ListMenus(ctx context.Context) ([]Menu, error)
	GetMenu(ctx context.Context, id int64) (*Menu, error)
	MenusOnDate(ctx context.Context, date time.Time) ([]Menu, error)
	CreateMenu(ctx context.Context, input MenuInput) (*Menu, error)
	UpdateMenu(ctx context.Context, id int64, input MenuInput) error
	DeleteMenu(ctx context.Context, id int64) error
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

// ListDishes returns all dishes ordered by name ascending.
func (r *PGRepository) ListDishes(ctx context.Context) ([]Dish, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, nutritional_info, created_at, updated_at FROM dishes ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dishes []Dish
	for rows.Next() {
		var d Dish
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.NutritionalInfo, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		dishes = append(dishes, d)
	}
	return dishes, rows.Err()
}

// GetDish fetches a dish by primary key.
func (r *PGRepository) GetDish(ctx context.Context, id int64) (*Dish, error) {
	var d Dish
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, nutritional_info, created_at, updated_at FROM dishes WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Description, &d.NutritionalInfo, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// CreateDish inserts a dish. Duplicate names are reported as shared.ErrConflict.
func (r *PGRepository) CreateDish(ctx context.Context, dish Dish) (*Dish, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO dishes (name, description, nutritional_info, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		dish.Name, dish.Description, dish.NutritionalInfo, now,
	).Scan(&dish.ID)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	dish.CreatedAt = now
	dish.UpdatedAt = now
	return &dish, nil
}

// UpdateDish rewrites a dish's editable fields.
func (r *PGRepository) UpdateDish(ctx context.Context, id int64, dish Dish) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE dishes SET name = $1, description = $2, nutritional_info = $3, updated_at = $4 WHERE id = $5`,
		dish.Name, dish.Description, dish.NutritionalInfo, time.Now().UTC(), id)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteDish removes a dish unless any menu still references it. The guard and
// the delete run in one transaction so a concurrent menu edit cannot slip in
// between them.
func (r *PGRepository) DeleteDish(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var inUse bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM menu_dishes WHERE dish_id = $1)`, id,
		).Scan(&inUse); err != nil {
			return err
		}
		if inUse {
			return shared.ErrConflict
		}
		tag, err := tx.Exec(ctx, `DELETE FROM dishes WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ListMenus returns all menus ordered by date descending, dishes included.
func (r *PGRepository) ListMenus(ctx context.Context) ([]Menu, error) {
	return r.queryMenus(ctx,
		`SELECT id, date, meal_type, created_at, updated_at FROM menus
		 ORDER BY date DESC, CASE meal_type WHEN 'Lunch' THEN 0 ELSE 1 END`)
}

// GetMenu fetches a single menu with its dishes.
func (r *PGRepository) GetMenu(ctx context.Context, id int64) (*Menu, error) {
	menus, err := r.queryMenus(ctx,
		`SELECT id, date, meal_type, created_at, updated_at FROM menus WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(menus) == 0 {
		return nil, shared.ErrNotFound
	}
	return &menus[0], nil
}

// MenusOnDate returns every menu published for the given calendar date,
// lunch before dinner.
func (r *PGRepository) MenusOnDate(ctx context.Context, date time.Time) ([]Menu, error) {
	return r.queryMenus(ctx,
		`SELECT id, date, meal_type, created_at, updated_at FROM menus WHERE date = $1
		 ORDER BY CASE meal_type WHEN 'Lunch' THEN 0 ELSE 1 END`,
		date.Format("2006-01-02"))
}

// CreateMenu inserts a menu and its dish associations atomically. Unknown dish
// IDs fail the whole transaction with shared.ErrValidation.
func (r *PGRepository) CreateMenu(ctx context.Context, input MenuInput) (*Menu, error) {
	var menu *Menu
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := verifyDishIDs(ctx, tx, input.DishIDs); err != nil {
			return err
		}
		now := time.Now().UTC()
		var id int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO menus (date, meal_type, created_at, updated_at) VALUES ($1, $2, $3, $3) RETURNING id`,
			input.Date.Format("2006-01-02"), input.MealType, now,
		).Scan(&id); err != nil {
			return mapUniqueViolation(err)
		}
		if err := insertAssociations(ctx, tx, id, input.DishIDs); err != nil {
			return err
		}
		menu = &Menu{ID: id, Date: input.Date, MealType: input.MealType, CreatedAt: now, UpdatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetMenu(ctx, menu.ID)
}

// UpdateMenu rewrites the menu row and replaces the dish set wholesale in a
// single transaction, so readers never observe an empty or mixed set.
func (r *PGRepository) UpdateMenu(ctx context.Context, id int64, input MenuInput) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := verifyDishIDs(ctx, tx, input.DishIDs); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE menus SET date = $1, meal_type = $2, updated_at = $3 WHERE id = $4`,
			input.Date.Format("2006-01-02"), input.MealType, time.Now().UTC(), id)
		if err != nil {
			return mapUniqueViolation(err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM menu_dishes WHERE menu_id = $1`, id); err != nil {
			return err
		}
		return insertAssociations(ctx, tx, id, input.DishIDs)
	})
}

// DeleteMenu removes a menu and its associations.
func (r *PGRepository) DeleteMenu(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM menu_dishes WHERE menu_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM menus WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *PGRepository) queryMenus(ctx context.Context, query string, args ...any) ([]Menu, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var menus []Menu
	var ids []int64
	for rows.Next() {
		var m Menu
		if err := rows.Scan(&m.ID, &m.Date, &m.MealType, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		menus = append(menus, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(menus) == 0 {
		return menus, nil
	}

	dishRows, err := r.pool.Query(ctx,
		`SELECT md.menu_id, d.id, d.name, d.description, d.nutritional_info, d.created_at, d.updated_at
		 FROM menu_dishes md
		 JOIN dishes d ON d.id = md.dish_id
		 WHERE md.menu_id = ANY($1)
		 ORDER BY d.name ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer dishRows.Close()

	byMenu := make(map[int64][]Dish, len(menus))
	for dishRows.Next() {
		var menuID int64
		var d Dish
		if err := dishRows.Scan(&menuID, &d.ID, &d.Name, &d.Description, &d.NutritionalInfo, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		byMenu[menuID] = append(byMenu[menuID], d)
	}
	if err := dishRows.Err(); err != nil {
		return nil, err
	}
	for i := range menus {
		menus[i].Dishes = byMenu[menus[i].ID]
	}
	return menus, nil
}

// verifyDishIDs confirms every referenced dish exists inside the current
// transaction. Unknown IDs are rejected rather than silently dropped.
func verifyDishIDs(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return shared.ErrValidation
	}
	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM dishes WHERE id = ANY($1)`, ids).Scan(&count); err != nil {
		return err
	}
	if count != len(ids) {
		return shared.ErrValidation
	}
	return nil
}

func insertAssociations(ctx context.Context, tx pgx.Tx, menuID int64, dishIDs []int64) error {
	for _, dishID := range dishIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO menu_dishes (menu_id, dish_id) VALUES ($1, $2)`, menuID, dishID); err != nil {
			return err
		}
	}
	return nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}
