package eventbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/tasktalk/internal/core/eventbus"
	"github.com/colonyops/tasktalk/internal/core/eventbus/testbus"
	"github.com/colonyops/tasktalk/internal/core/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_dispatches_in_order(t *testing.T) {
	tb := testbus.New(t)

	for i := int64(1); i <= 3; i++ {
		tb.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: task.Task{ID: i}})
	}

	require.Eventually(t, func() bool {
		return len(tb.Of(eventbus.EventTaskCreated)) == 3
	}, time.Second, 5*time.Millisecond)

	for i, created := range tb.Tasks(eventbus.EventTaskCreated) {
		assert.Equal(t, int64(i+1), created.ID)
	}
	tb.AssertNotPublished(t, eventbus.EventTaskDeleted, 20*time.Millisecond)
}

func TestEventBus_drop_when_full(t *testing.T) {
	bus := eventbus.New(1)

	var dropped []eventbus.Event
	bus.Observe(eventbus.Observer{
		Dropped: func(e eventbus.Event, _ any) { dropped = append(dropped, e) },
	})

	// Not started, so the second publish cannot be buffered.
	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{})
	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{})

	assert.Equal(t, []eventbus.Event{eventbus.EventTaskDeleted}, dropped)
}

func TestEventBus_subscriber_panic_is_recovered(t *testing.T) {
	bus := eventbus.New(8)

	var (
		mu        sync.Mutex
		panics    []any
		delivered bool
	)
	bus.Observe(eventbus.Observer{
		Panicked: func(_ eventbus.Event, _ any, r any) {
			mu.Lock()
			defer mu.Unlock()
			panics = append(panics, r)
		},
	})
	bus.Observe(eventbus.Observer{
		Panicked: func(eventbus.Event, any, any) { panic("observer") },
	})
	bus.SubscribeTaskCreated(func(eventbus.TaskCreatedPayload) { panic("boom") })
	bus.SubscribeTaskCreated(func(eventbus.TaskCreatedPayload) {
		mu.Lock()
		defer mu.Unlock()
		delivered = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Start(ctx)

	bus.PublishTaskCreated(eventbus.TaskCreatedPayload{})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []any{"boom"}, panics)
}

func TestEventBus_observer_sees_subscribe(t *testing.T) {
	bus := eventbus.New(1)

	var seen []eventbus.Event
	bus.Observe(eventbus.Observer{
		Subscribed: func(e eventbus.Event) { seen = append(seen, e) },
	})
	bus.SubscribeConfigReloaded(func(eventbus.ConfigReloadedPayload) {})

	assert.Equal(t, []eventbus.Event{eventbus.EventConfigReloaded}, seen)
}
