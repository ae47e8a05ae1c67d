// Package jobs runs the background feed refresh on an Asynq queue.
package jobs

import (
	"context"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDispatchRefresh re-pulls the dispatch table from the sheet feed.
	TaskDispatchRefresh = "dispatch:refresh"
)

// RefreshFunc performs one full feed refresh.
type RefreshFunc func(ctx context.Context) error

// NewDispatchRefreshTask constructs the refresh task. The task carries no
// payload; a refresh always pulls the whole table.
func NewDispatchRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskDispatchRefresh, nil)
}

// HandleDispatchRefresh adapts a RefreshFunc into an Asynq handler.
func HandleDispatchRefresh(refresh RefreshFunc) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		return refresh(ctx)
	}
}
