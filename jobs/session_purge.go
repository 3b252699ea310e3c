package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPurgeBatchSize = 1000

// SessionPurgeJob deletes session audit rows whose expiry has passed. The
// Redis copy of a session expires on its own; this keeps the Postgres audit
// table from growing without bound.
type SessionPurgeJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewSessionPurgeJob constructs a SessionPurgeJob.
func NewSessionPurgeJob(pool *pgxpool.Pool, logger *slog.Logger) *SessionPurgeJob {
	return &SessionPurgeJob{pool: pool, logger: logger}
}

// Handle processes TaskSessionPurge tasks.
func (j *SessionPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SessionPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	batch := payload.BatchSize
	if batch <= 0 {
		batch = defaultPurgeBatchSize
	}

	tag, err := j.pool.Exec(ctx,
		`DELETE FROM sessions WHERE id IN (
			SELECT id FROM sessions WHERE expires_at < now() LIMIT $1
		)`, batch)
	if err != nil {
		j.logger.Error("purge sessions", slog.Any("error", err))
		return err
	}
	if tag.RowsAffected() > 0 {
		j.logger.Info("purged expired sessions", slog.Int64("rows", tag.RowsAffected()))
	}
	return nil
}
