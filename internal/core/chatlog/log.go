package chatlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Log is an append-only transcript that evicts its oldest entries beyond a
// fixed limit. Observers are called inline on the appending goroutine and
// must not append to or clear the log themselves.
type Log struct {
	limit     int
	persister Persister
	logger    zerolog.Logger
	now       func() time.Time

	// emit serializes change+notify so observers see events in order.
	emit sync.Mutex

	mu        sync.Mutex
	messages  []Message
	observers map[int]Observer
	nextObs   int
}

// Option configures a Log.
type Option func(*Log)

// WithPersister makes the log write through to p.
func WithPersister(p Persister) Option {
	return func(l *Log) { l.persister = p }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// WithClock sets the timestamp source for new messages.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// New creates an empty log keeping at most limit messages. A limit below one
// uses DefaultLimit.
func New(limit int, opts ...Option) *Log {
	if limit < 1 {
		limit = DefaultLimit
	}

	l := &Log{
		limit:     limit,
		logger:    zerolog.Nop(),
		now:       time.Now,
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit returns the maximum number of retained messages.
func (l *Log) Limit() int {
	return l.limit
}

// Load replaces the in-memory transcript with the newest persisted messages.
// Observers are not notified.
func (l *Log) Load(ctx context.Context) error {
	if l.persister == nil {
		return nil
	}

	msgs, err := l.persister.Recent(ctx, l.limit)
	if err != nil {
		return fmt.Errorf("load chat history: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = trim(msgs, l.limit)
	return nil
}

// Append records a message and notifies observers. Persistence failures are
// logged; the message is still kept in memory.
func (l *Log) Append(ctx context.Context, role Role, text string) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: l.now(),
	}

	l.emit.Lock()
	defer l.emit.Unlock()

	if l.persister != nil {
		if err := l.persister.Append(ctx, msg); err != nil {
			l.logger.Error().Err(err).Str("role", string(role)).Msg("failed to persist chat message")
		}
	}

	l.mu.Lock()
	l.messages = trim(append(l.messages, msg), l.limit)
	observers := l.observerList()
	l.mu.Unlock()

	notify(observers, Event{Kind: EventMessage, Message: msg})
	return msg
}

// Clear empties the transcript and notifies observers.
func (l *Log) Clear(ctx context.Context) error {
	l.emit.Lock()
	defer l.emit.Unlock()

	if l.persister != nil {
		if err := l.persister.Clear(ctx); err != nil {
			return fmt.Errorf("clear chat history: %w", err)
		}
	}

	l.mu.Lock()
	l.messages = nil
	observers := l.observerList()
	l.mu.Unlock()

	notify(observers, Event{Kind: EventCleared})
	return nil
}

// Snapshot returns a copy of the transcript, oldest first.
func (l *Log) Snapshot() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of retained messages.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// Subscribe registers fn for every future event. The returned function
// removes the subscription.
func (l *Log) Subscribe(fn Observer) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextObs
	l.nextObs++
	l.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.observers, id)
		})
	}
}

// observerList returns observers in subscription order. Caller holds mu.
func (l *Log) observerList() []Observer {
	out := make([]Observer, 0, len(l.observers))
	for id := 0; id < l.nextObs; id++ {
		if fn, ok := l.observers[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(observers []Observer, ev Event) {
	for _, fn := range observers {
		fn(ev)
	}
}

func trim(msgs []Message, limit int) []Message {
	if len(msgs) <= limit {
		return msgs
	}
	kept := make([]Message, limit)
	copy(kept, msgs[len(msgs)-limit:])
	return kept
}
