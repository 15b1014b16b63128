package eventbus_test

import (
	"testing"

	"github.com/colonyops/tasktalk/internal/core/eventbus"
	"github.com/colonyops/tasktalk/internal/core/eventbus/testbus"
	"github.com/colonyops/tasktalk/internal/core/task"
	"github.com/rs/zerolog"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.Nop())

	tb.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: task.Task{ID: 1, Date: "2025-03-05"}})
	tb.PublishConfigReloaded(eventbus.ConfigReloadedPayload{})
	tb.PublishTaskDeleted(eventbus.TaskDeletedPayload{Task: task.Task{ID: 1}})

	tb.AssertPublished(t, eventbus.EventTaskDeleted)
}
