// Package testbus provides a started EventBus that records what it
// dispatches, for asserting on events in tests.
package testbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/tasktalk/internal/core/eventbus"
	"github.com/colonyops/tasktalk/internal/core/task"
)

// publishTimeout bounds how long AssertPublished waits for dispatch.
const publishTimeout = 500 * time.Millisecond

// Bus is a running EventBus subscribed to every event it carries.
type Bus struct {
	*eventbus.EventBus

	mu      sync.Mutex
	seen    map[eventbus.Event][]any
	changed chan struct{} // closed and replaced on every recorded event
}

// New starts a recording bus that stops when the test ends.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{
		EventBus: eventbus.New(64),
		seen:     make(map[eventbus.Event][]any),
		changed:  make(chan struct{}),
	}

	tb.SubscribeConfigReloaded(func(p eventbus.ConfigReloadedPayload) {
		tb.record(eventbus.EventConfigReloaded, p)
	})
	tb.SubscribeTaskCreated(func(p eventbus.TaskCreatedPayload) {
		tb.record(eventbus.EventTaskCreated, p)
	})
	tb.SubscribeTaskDeleted(func(p eventbus.TaskDeletedPayload) {
		tb.record(eventbus.EventTaskDeleted, p)
	})

	ctx, cancel := context.WithCancel(context.Background())
	go tb.Start(ctx)
	t.Cleanup(cancel)

	return tb
}

func (tb *Bus) record(event eventbus.Event, payload any) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.seen[event] = append(tb.seen[event], payload)
	close(tb.changed)
	tb.changed = make(chan struct{})
}

// Of returns the payloads recorded for event, in dispatch order.
func (tb *Bus) Of(event eventbus.Event) []any {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return append([]any(nil), tb.seen[event]...)
}

// Tasks returns the task carried by every task.created or task.deleted
// payload recorded for event.
func (tb *Bus) Tasks(event eventbus.Event) []task.Task {
	var out []task.Task
	for _, p := range tb.Of(event) {
		switch p := p.(type) {
		case eventbus.TaskCreatedPayload:
			out = append(out, p.Task)
		case eventbus.TaskDeletedPayload:
			out = append(out, p.Task)
		}
	}
	return out
}

// WaitFor blocks until event has been recorded at least once or timeout
// passes.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		tb.mu.Lock()
		n := len(tb.seen[event])
		changed := tb.changed
		tb.mu.Unlock()

		if n > 0 {
			return true
		}

		select {
		case <-changed:
		case <-timer.C:
			return false
		}
	}
}

// AssertPublished fails the test unless event is dispatched shortly.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if !tb.WaitFor(event, publishTimeout) {
		t.Errorf("event %q was not published", event)
	}
}

// AssertNotPublished fails the test if event is dispatched within wait.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event, wait time.Duration) {
	t.Helper()
	if tb.WaitFor(event, wait) {
		t.Errorf("event %q was published", event)
	}
}
