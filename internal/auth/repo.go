package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSessionStore implements SessionStore using PostgreSQL.
type PGSessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore constructs a PostgreSQL session store.
func NewSessionStore(pool *pgxpool.Pool) *PGSessionStore {
	return &PGSessionStore{pool: pool}
}

// CreateSession persists a new login session for auditing.
func (r *PGSessionStore) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at, ip, ua)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		id, userID,
		pgtype.Timestamptz{Time: now, Valid: true},
		pgtype.Timestamptz{Time: expiresAt.UTC(), Valid: true},
		pgtype.Text{String: ip, Valid: ip != ""},
		pgtype.Text{String: ua, Valid: ua != ""},
	)
	return err
}

// DeleteSession removes a session record.
func (r *PGSessionStore) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

var _ SessionStore = (*PGSessionStore)(nil)
