// Package eventbus provides a typed publish/subscribe event bus that fans
// task and configuration changes out to the CLI and the WebSocket server.
package eventbus

import (
	"github.com/colonyops/tasktalk/internal/core/config"
	"github.com/colonyops/tasktalk/internal/core/task"
)

// Events lists every event name and its payload type.
var Events = map[string]any{
	// Keep list sorted A-Z
	"config.reloaded": ConfigReloadedPayload{},
	"task.created":    TaskCreatedPayload{},
	"task.deleted":    TaskDeletedPayload{},
}

// ConfigReloadedPayload is emitted when configuration is reloaded.
type ConfigReloadedPayload struct {
	Config *config.Config
}

// TaskCreatedPayload is emitted after a task is persisted.
type TaskCreatedPayload struct {
	Task task.Task
}

// TaskDeletedPayload is emitted after a task is removed. Task holds the
// record as it was last seen; only ID is guaranteed.
type TaskDeletedPayload struct {
	Task task.Task
}
