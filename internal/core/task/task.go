// Package task defines the scheduled task record and the persistence
// contract the assistant depends on.
package task

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("task not found")

// Task is a single scheduled to-do item.
type Task struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"` // HH:MM, 24-hour
	Completed bool   `json:"completed"`
}

// Store defines the interface for task persistence.
type Store interface {
	// Put persists a new task and returns its ID.
	Put(ctx context.Context, t Task) (int64, error)

	// QueryByDate returns all tasks scheduled on the given ISO date,
	// ordered by time then ID.
	QueryByDate(ctx context.Context, date string) ([]Task, error)

	// DeleteByID removes a task.
	// Returns ErrNotFound if the task does not exist.
	DeleteByID(ctx context.Context, id int64) error

	// List returns every task ordered by date, time, then ID.
	List(ctx context.Context) ([]Task, error)
}

// IDSource hands out creation-time derived task IDs (Unix milliseconds).
// IDs are strictly increasing even when two tasks are created within the same
// millisecond.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDSource creates an IDSource reading the time from now.
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns the next task ID.
func (s *IDSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
