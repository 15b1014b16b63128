package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/tasktalk/internal/core/task"
	"github.com/colonyops/tasktalk/internal/data/db"
)

// TaskStore implements task.Store using SQLite.
type TaskStore struct {
	db  *db.DB
	now func() time.Time
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db, now: time.Now}
}

// Put inserts a task under its own ID.
func (s *TaskStore) Put(ctx context.Context, t task.Task) (int64, error) {
	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO tasks (id, text, date, time, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Text, t.Date, t.Time, boolToInt(t.Completed), s.now().UnixNano(),
	)
	if err != nil {
		if IsUniqueConstraintError(err) {
			return 0, fmt.Errorf("insert task %d: id already exists: %w", t.ID, err)
		}
		return 0, fmt.Errorf("insert task %d: %w", t.ID, err)
	}
	return t.ID, nil
}

// Get returns a single task.
func (s *TaskStore) Get(ctx context.Context, id int64) (task.Task, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT id, text, date, time, completed FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if err != nil {
		if IsNotFoundError(err) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// QueryByDate returns the tasks scheduled on date, ordered by time then ID.
func (s *TaskStore) QueryByDate(ctx context.Context, date string) ([]task.Task, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, text, date, time, completed FROM tasks
		WHERE date = ?
		ORDER BY time, id`, date)
	if err != nil {
		return nil, fmt.Errorf("query tasks by date: %w", err)
	}
	return collectTasks(rows)
}

// List returns every task ordered by date, time, then ID.
func (s *TaskStore) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, text, date, time, completed FROM tasks
		ORDER BY date, time, id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return collectTasks(rows)
}

// DeleteByID removes a task. Returns task.ErrNotFound if it does not exist.
func (s *TaskStore) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n == 0 {
		return task.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (task.Task, error) {
	var (
		t         task.Task
		completed int
	)
	if err := row.Scan(&t.ID, &t.Text, &t.Date, &t.Time, &completed); err != nil {
		return task.Task{}, err
	}
	t.Completed = completed != 0
	return t, nil
}

func collectTasks(rows *sql.Rows) ([]task.Task, error) {
	defer func() { _ = rows.Close() }()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
