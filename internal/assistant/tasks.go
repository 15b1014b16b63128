package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/colonyops/tasktalk/internal/core/eventbus"
	"github.com/colonyops/tasktalk/internal/core/task"
	"github.com/colonyops/tasktalk/internal/core/when"
)

// TaskService wraps task.Store for callers outside the conversation (CLI,
// HTTP API) and publishes the same events the conversation does.
type TaskService struct {
	store task.Store
	bus   *eventbus.EventBus
	ids   *task.IDSource
	clock when.Clock
	log   zerolog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(store task.Store, bus *eventbus.EventBus, ids *task.IDSource, clock when.Clock, log zerolog.Logger) *TaskService {
	if clock == nil {
		clock = time.Now
	}
	if ids == nil {
		ids = task.NewIDSource(clock)
	}
	return &TaskService{
		store: store,
		bus:   bus,
		ids:   ids,
		clock: clock,
		log:   log.With().Str("component", "task-service").Logger(),
	}
}

// Add schedules a task. An empty date means today and an empty time means the
// top of the current hour.
func (s *TaskService) Add(ctx context.Context, text, date, clock string) (task.Task, error) {
	now := s.clock()

	text = strings.TrimSpace(text)
	if date == "" {
		date = when.Today(now)
	}
	if clock == "" {
		clock = when.ParseTime("", now)
	}

	err := criterio.ValidateStruct(
		criterio.Run("text", text, notBlank),
		criterio.Run("date", date, layout(when.DateLayout)),
		criterio.Run("time", clock, layout(when.TimeLayout)),
	)
	if err != nil {
		return task.Task{}, err
	}

	t := task.Task{
		ID:   s.ids.Next(),
		Text: text,
		Date: date,
		Time: clock,
	}
	if _, err := s.store.Put(ctx, t); err != nil {
		return task.Task{}, fmt.Errorf("add task: %w", err)
	}

	s.log.Debug().Int64("task_id", t.ID).Str("date", t.Date).Msg("task added")
	s.bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: t})

	return t, nil
}

// List returns the tasks on date, or every task when date is empty.
func (s *TaskService) List(ctx context.Context, date string) ([]task.Task, error) {
	if date == "" {
		return s.store.List(ctx)
	}
	if err := criterio.ValidateStruct(criterio.Run("date", date, layout(when.DateLayout))); err != nil {
		return nil, err
	}
	return s.store.QueryByDate(ctx, date)
}

// Delete removes the task with id. It returns task.ErrNotFound if there is
// none.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}

	s.bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{Task: task.Task{ID: id}})
	return nil
}

func notBlank(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}

func layout(format string) func(string) error {
	return func(s string) error {
		if _, err := time.Parse(format, s); err != nil {
			return fmt.Errorf("must match %s", format)
		}
		return nil
	}
}
