package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tasktalk/internal/core/task"
	"github.com/colonyops/tasktalk/internal/data/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestTaskStore(t *testing.T) {
	ctx := context.Background()

	t.Run("put and query by date", func(t *testing.T) {
		store := NewTaskStore(openTestDB(t))

		for _, tk := range []task.Task{
			{ID: 3, Text: "dentist", Date: "2025-03-05", Time: "15:00"},
			{ID: 1, Text: "buy milk", Date: "2025-03-05", Time: "17:00"},
			{ID: 2, Text: "call mom", Date: "2025-03-05", Time: "09:00"},
			{ID: 4, Text: "gym", Date: "2025-03-06", Time: "07:00"},
		} {
			id, err := store.Put(ctx, tk)
			require.NoError(t, err)
			assert.Equal(t, tk.ID, id)
		}

		got, err := store.QueryByDate(ctx, "2025-03-05")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"call mom", "dentist", "buy milk"}, []string{got[0].Text, got[1].Text, got[2].Text})

		none, err := store.QueryByDate(ctx, "2030-01-01")
		require.NoError(t, err)
		assert.Empty(t, none)
		assert.NotNil(t, none)
	})

	t.Run("get round trips completed flag", func(t *testing.T) {
		store := NewTaskStore(openTestDB(t))

		want := task.Task{ID: 42, Text: "water plants", Date: "2025-06-14", Time: "10:00", Completed: true}
		_, err := store.Put(ctx, want)
		require.NoError(t, err)

		got, err := store.Get(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		_, err = store.Get(ctx, 43)
		assert.ErrorIs(t, err, task.ErrNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		store := NewTaskStore(openTestDB(t))

		_, err := store.Put(ctx, task.Task{ID: 1, Text: "a", Date: "2025-01-01", Time: "09:00"})
		require.NoError(t, err)

		_, err = store.Put(ctx, task.Task{ID: 1, Text: "b", Date: "2025-01-01", Time: "09:00"})
		require.Error(t, err)
		assert.True(t, IsUniqueConstraintError(err))
	})

	t.Run("delete", func(t *testing.T) {
		store := NewTaskStore(openTestDB(t))

		_, err := store.Put(ctx, task.Task{ID: 1, Text: "a", Date: "2025-01-01", Time: "09:00"})
		require.NoError(t, err)

		require.NoError(t, store.DeleteByID(ctx, 1))
		assert.ErrorIs(t, store.DeleteByID(ctx, 1), task.ErrNotFound)

		all, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("list orders by date and time", func(t *testing.T) {
		store := NewTaskStore(openTestDB(t))

		for _, tk := range []task.Task{
			{ID: 1, Text: "late", Date: "2025-02-01", Time: "09:00"},
			{ID: 2, Text: "early evening", Date: "2025-01-01", Time: "18:00"},
			{ID: 3, Text: "early morning", Date: "2025-01-01", Time: "06:00"},
		} {
			_, err := store.Put(ctx, tk)
			require.NoError(t, err)
		}

		all, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, int64(3), all[0].ID)
		assert.Equal(t, int64(2), all[1].ID)
		assert.Equal(t, int64(1), all[2].ID)
	})
}
