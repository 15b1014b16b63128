package chatlog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memPersister is an in-memory Persister for testing.
type memPersister struct {
	items     []Message
	appendErr error
	clearErr  error
}

func (m *memPersister) Append(_ context.Context, msg Message) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.items = append(m.items, msg)
	return nil
}

func (m *memPersister) Recent(_ context.Context, limit int) ([]Message, error) {
	if len(m.items) <= limit {
		return append([]Message(nil), m.items...), nil
	}
	return append([]Message(nil), m.items[len(m.items)-limit:]...), nil
}

func (m *memPersister) Clear(_ context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.items = nil
	return nil
}

func TestLog_Append_keeps_newest_in_order(t *testing.T) {
	l := New(DefaultLimit)

	for i := range 60 {
		l.Append(context.Background(), RoleUser, fmt.Sprintf("message %d", i))
	}

	msgs := l.Snapshot()
	require.Len(t, msgs, 50)
	for i, msg := range msgs {
		assert.Equal(t, fmt.Sprintf("message %d", i+10), msg.Text)
	}
}

func TestLog_Append_notifies_observers(t *testing.T) {
	l := New(3)

	var events []Event
	l.Subscribe(func(ev Event) { events = append(events, ev) })

	first := l.Append(context.Background(), RoleUser, "add task")
	l.Append(context.Background(), RoleAssistant, "When would you like to schedule this task?")

	require.Len(t, events, 2)
	assert.Equal(t, EventMessage, events[0].Kind)
	assert.Equal(t, first, events[0].Message)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, RoleAssistant, events[1].Message.Role)
}

func TestLog_Subscribe_unsubscribe(t *testing.T) {
	l := New(5)

	count := 0
	unsubscribe := l.Subscribe(func(Event) { count++ })

	l.Append(context.Background(), RoleUser, "one")
	unsubscribe()
	unsubscribe()
	l.Append(context.Background(), RoleUser, "two")

	assert.Equal(t, 1, count)
}

func TestLog_Observer_can_read_snapshot(t *testing.T) {
	l := New(5)

	var seen int
	l.Subscribe(func(Event) { seen = len(l.Snapshot()) })

	l.Append(context.Background(), RoleUser, "hello")
	assert.Equal(t, 1, seen)
}

func TestLog_Clear(t *testing.T) {
	store := &memPersister{}
	l := New(5, WithPersister(store))

	var kinds []EventKind
	l.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	l.Append(context.Background(), RoleUser, "hello")
	require.NoError(t, l.Clear(context.Background()))

	assert.Empty(t, l.Snapshot())
	assert.Empty(t, store.items)
	assert.Equal(t, []EventKind{EventMessage, EventCleared}, kinds)
}

func TestLog_Clear_persister_error(t *testing.T) {
	store := &memPersister{clearErr: errors.New("disk full")}
	l := New(5, WithPersister(store))
	l.Append(context.Background(), RoleUser, "hello")

	err := l.Clear(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, l.Len(), "failed clear keeps the transcript")
}

func TestLog_Append_persister_error_keeps_message(t *testing.T) {
	store := &memPersister{appendErr: errors.New("disk full")}
	l := New(5, WithPersister(store))

	l.Append(context.Background(), RoleSystem, "Speech recognition error: network")

	require.Equal(t, 1, l.Len())
	assert.Empty(t, store.items)
}

func TestLog_Load(t *testing.T) {
	store := &memPersister{}
	for i := range 8 {
		store.items = append(store.items, Message{ID: fmt.Sprint(i), Role: RoleUser, Text: fmt.Sprint(i)})
	}

	l := New(5, WithPersister(store))
	require.NoError(t, l.Load(context.Background()))

	msgs := l.Snapshot()
	require.Len(t, msgs, 5)
	assert.Equal(t, "3", msgs[0].Text)
	assert.Equal(t, "7", msgs[4].Text)

	l.Append(context.Background(), RoleAssistant, "8")
	assert.Len(t, store.items, 9)
	assert.Equal(t, "4", l.Snapshot()[0].Text)
}

func TestNew_default_limit(t *testing.T) {
	assert.Equal(t, DefaultLimit, New(0).Limit())
	assert.Equal(t, 7, New(7).Limit())
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleSystem.IsValid())
	assert.False(t, Role("robot").IsValid())
}
