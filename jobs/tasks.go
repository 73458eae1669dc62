package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/CalibrantLtd/Slido/internal/dashboard"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup precomputes a dashboard so that the cache is hot.
	TaskDashboardWarmup = "claims:dashboard_warmup"
	// TaskCacheInvalidate drops every cached dashboard.
	TaskCacheInvalidate = "claims:cache_invalidate"
)

// DashboardWarmupPayload carries the dataset and every parameter set to
// build for it.
type DashboardWarmupPayload struct {
	Dataset    dashboard.Dataset      `json:"dataset"`
	Parameters []dashboard.Parameters `json:"parameters"`
}

// NewDashboardWarmupTask constructs an Asynq task. Warm-ups of the same
// dataset are deduplicated while one is pending.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	opts := []asynq.Option{asynq.MaxRetry(3), asynq.Timeout(2 * time.Minute)}
	if payload.Dataset.ID != "" {
		opts = append(opts, asynq.TaskID(TaskDashboardWarmup+":"+payload.Dataset.ID))
	}
	return asynq.NewTask(TaskDashboardWarmup, data, opts...), nil
}

// NewCacheInvalidateTask constructs the cache invalidation task.
func NewCacheInvalidateTask() *asynq.Task {
	return asynq.NewTask(TaskCacheInvalidate, nil, asynq.MaxRetry(1))
}
