// Package jobs holds the background task definitions and the Asynq worker
// that runs them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionPurge removes expired session audit rows.
	TaskSessionPurge = "sessions:purge"
)

// SessionPurgePayload bounds how many rows a single purge run may delete.
type SessionPurgePayload struct {
	BatchSize int `json:"batch_size"`
}

// NewSessionPurgeTask constructs an Asynq task for purging expired sessions.
func NewSessionPurgeTask(batchSize int) (*asynq.Task, error) {
	data, err := json.Marshal(SessionPurgePayload{BatchSize: batchSize})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPurge, data), nil
}
