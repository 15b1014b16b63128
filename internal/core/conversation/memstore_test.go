package conversation

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/colonyops/tasktalk/internal/core/task"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory task.Store for machine tests.
type memStore struct {
	mu    sync.Mutex
	tasks map[int64]task.Task
	fail  bool
}

var _ task.Store = (*memStore)(nil)

func newMemStore(seed ...task.Task) *memStore {
	s := &memStore{tasks: make(map[int64]task.Task)}
	for _, t := range seed {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *memStore) Put(_ context.Context, t task.Task) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return 0, errStoreDown
	}
	s.tasks[t.ID] = t
	return t.ID, nil
}

func (s *memStore) QueryByDate(_ context.Context, date string) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errStoreDown
	}
	var out []task.Task
	for _, t := range s.tasks {
		if t.Date == date {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out, nil
}

func (s *memStore) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errStoreDown
	}
	if _, ok := s.tasks[id]; !ok {
		return task.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memStore) List(_ context.Context) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sortTasks(out)
	return out, nil
}

func sortTasks(tasks []task.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Date != tasks[j].Date {
			return tasks[i].Date < tasks[j].Date
		}
		if tasks[i].Time != tasks[j].Time {
			return tasks[i].Time < tasks[j].Time
		}
		return tasks[i].ID < tasks[j].ID
	})
}
