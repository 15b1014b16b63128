package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tasktalk/internal/core/eventbus"
	"github.com/colonyops/tasktalk/internal/core/eventbus/testbus"
	"github.com/colonyops/tasktalk/internal/core/task"
	"github.com/colonyops/tasktalk/internal/data/db"
	"github.com/colonyops/tasktalk/internal/data/stores"
)

func newTestTaskService(t *testing.T) (*TaskService, *testbus.Bus) {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	tb := testbus.New(t)
	clock := func() time.Time { return fixedNow }
	svc := NewTaskService(stores.NewTaskStore(database), tb.EventBus, nil, clock, zerolog.Nop())
	return svc, tb
}

func TestTaskService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to today at the current hour", func(t *testing.T) {
		svc, tb := newTestTaskService(t)

		got, err := svc.Add(ctx, "  water plants ", "", "")
		require.NoError(t, err)
		assert.Equal(t, task.Task{ID: fixedNow.UnixMilli(), Text: "water plants", Date: "2025-06-14", Time: "10:00"}, got)

		tb.AssertPublished(t, eventbus.EventTaskCreated)

		listed, err := svc.List(ctx, "2025-06-14")
		require.NoError(t, err)
		assert.Equal(t, []task.Task{got}, listed)
	})

	t.Run("explicit date and time", func(t *testing.T) {
		svc, _ := newTestTaskService(t)

		got, err := svc.Add(ctx, "dentist", "2025-07-01", "14:30")
		require.NoError(t, err)
		assert.Equal(t, "2025-07-01", got.Date)
		assert.Equal(t, "14:30", got.Time)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		svc, tb := newTestTaskService(t)

		_, err := svc.Add(ctx, " ", "07/01/2025", "2pm")

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		require.Len(t, fieldErrs, 3)
		assert.Equal(t, "text", fieldErrs[0].Field)
		assert.Equal(t, "date", fieldErrs[1].Field)
		assert.Equal(t, "time", fieldErrs[2].Field)

		tb.AssertNotPublished(t, eventbus.EventTaskCreated, 50*time.Millisecond)
	})

	t.Run("ids stay unique within one millisecond", func(t *testing.T) {
		svc, _ := newTestTaskService(t)

		a, err := svc.Add(ctx, "one", "", "")
		require.NoError(t, err)
		b, err := svc.Add(ctx, "two", "", "")
		require.NoError(t, err)
		assert.Equal(t, a.ID+1, b.ID)
	})
}

func TestTaskService_List(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestTaskService(t)

	_, err := svc.Add(ctx, "later", "2025-06-15", "08:00")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "sooner", "2025-06-14", "09:00")
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "sooner", all[0].Text)

	_, err = svc.List(ctx, "tomorrow")
	assert.Error(t, err)
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, tb := newTestTaskService(t)

	added, err := svc.Add(ctx, "call mom", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, added.ID))
	tb.AssertPublished(t, eventbus.EventTaskDeleted)

	err = svc.Delete(ctx, added.ID)
	require.ErrorIs(t, err, task.ErrNotFound)
}
