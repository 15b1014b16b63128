package conversation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/tasktalk/internal/core/task"
	"github.com/colonyops/tasktalk/internal/core/when"
)

// Turn is the outcome of handling one transcript.
type Turn struct {
	// Session is the conversation state to carry into the next turn.
	Session Session
	// Reply is the sentence the assistant says back.
	Reply string
	// Intent is the idle-state intent that matched, if any.
	Intent Intent
	// Wake is set when the wake phrase reset the conversation.
	Wake bool
	// Created is the task persisted by this turn, if any.
	Created *task.Task
	// Deleted is the task removed by this turn, if any.
	Deleted *task.Task
}

type handlerFunc func(ctx context.Context, sess Session, transcript string) (Turn, error)

// Machine interprets transcripts against a session. It holds no conversation
// state of its own: callers pass the session in and keep the one returned in
// the Turn.
type Machine struct {
	store   task.Store
	lexicon Lexicon
	clock   when.Clock
	ids     *task.IDSource

	states  map[State]handlerFunc
	intents map[Intent]handlerFunc
}

// Option configures a Machine.
type Option func(*Machine)

// WithLexicon replaces the default phrase table.
func WithLexicon(l Lexicon) Option {
	return func(m *Machine) { m.lexicon = l }
}

// WithClock sets the source of "now" used for date defaults and task IDs.
func WithClock(c when.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithIDSource shares a task ID source with other writers so IDs stay unique
// across them.
func WithIDSource(ids *task.IDSource) Option {
	return func(m *Machine) { m.ids = ids }
}

// NewMachine creates a Machine backed by the given task store.
func NewMachine(store task.Store, opts ...Option) *Machine {
	m := &Machine{
		store:   store,
		lexicon: DefaultLexicon(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.ids == nil {
		m.ids = task.NewIDSource(m.clock)
	}

	m.states = map[State]handlerFunc{
		StateIdle:                       m.handleIdle,
		StateAwaitingDate:               m.handleDate,
		StateAwaitingTask:               m.handleText,
		StateAwaitingTime:               m.handleTime,
		StateAwaitingDeleteDate:         m.handleDeleteDate,
		StateAwaitingDeleteConfirmation: m.handleDeleteConfirmation,
	}
	m.intents = map[Intent]handlerFunc{
		IntentAddTask:        m.beginAdd,
		IntentDeleteTask:     m.beginDelete,
		IntentListTasks:      m.listTasks,
		IntentCompletedTasks: say(ReplyComingSoon),
		IntentHelp:           say(ReplyHelp),
	}

	return m
}

// Lexicon returns the phrase table in use.
func (m *Machine) Lexicon() Lexicon {
	return m.lexicon
}

// SetLexicon swaps the phrase table. It must not be called concurrently
// with Handle.
func (m *Machine) SetLexicon(l Lexicon) {
	m.lexicon = l
}

// Handle runs one turn. The wake phrase resets the session from any state;
// otherwise the transcript is dispatched on the session's state.
//
// Store failures are returned as errors and the turn is not applied.
func (m *Machine) Handle(ctx context.Context, sess Session, transcript string) (Turn, error) {
	transcript = strings.ToLower(strings.TrimSpace(transcript))

	if m.lexicon.IsWake(transcript) {
		return Turn{Session: NewSession(), Reply: ReplyGreeting, Wake: true}, nil
	}

	handler, ok := m.states[sess.State]
	if !ok {
		sess = NewSession()
		handler = m.states[StateIdle]
	}

	return handler(ctx, sess, transcript)
}

func (m *Machine) handleIdle(ctx context.Context, sess Session, transcript string) (Turn, error) {
	intent := m.lexicon.Match(transcript)

	handler, ok := m.intents[intent]
	if !ok {
		return Turn{Session: sess.to(StateIdle), Reply: ReplyFallback}, nil
	}

	turn, err := handler(ctx, sess, transcript)
	turn.Intent = intent
	return turn, err
}

func (m *Machine) beginAdd(_ context.Context, sess Session, _ string) (Turn, error) {
	return Turn{Session: sess.to(StateAwaitingDate), Reply: ReplyAskDate}, nil
}

func (m *Machine) beginDelete(ctx context.Context, sess Session, _ string) (Turn, error) {
	today := when.Today(m.clock())

	tasks, err := m.store.QueryByDate(ctx, today)
	if err != nil {
		return Turn{}, fmt.Errorf("query tasks for %s: %w", today, err)
	}

	if len(tasks) == 0 {
		return Turn{Session: sess.to(StateAwaitingDeleteDate), Reply: ReplyNoTasksToday}, nil
	}

	sess.Pending.Candidates = tasks
	return Turn{
		Session: sess.to(StateAwaitingDeleteConfirmation),
		Reply:   replyDeleteCandidates("today", tasks),
	}, nil
}

func (m *Machine) listTasks(ctx context.Context, sess Session, transcript string) (Turn, error) {
	date := m.resolveQueryDate(transcript)

	tasks, err := m.store.QueryByDate(ctx, date)
	if err != nil {
		return Turn{}, fmt.Errorf("query tasks for %s: %w", date, err)
	}

	return Turn{Session: sess.to(StateIdle), Reply: replyTaskReport(date, tasks)}, nil
}

// resolveQueryDate picks the day a "what are my tasks" question is about:
// an explicit today or tomorrow, then any month-name date, else today.
func (m *Machine) resolveQueryDate(transcript string) string {
	now := m.clock()
	switch {
	case strings.Contains(transcript, "today"):
		return when.Today(now)
	case strings.Contains(transcript, "tomorrow"):
		return when.Tomorrow(now)
	case when.MentionsMonth(transcript):
		return when.ParseDate(transcript, now)
	default:
		return when.Today(now)
	}
}

func (m *Machine) handleDate(_ context.Context, sess Session, transcript string) (Turn, error) {
	sess.Pending.Date = when.ParseDate(transcript, m.clock())
	return Turn{Session: sess.to(StateAwaitingTask), Reply: replyScheduled(sess.Pending.Date)}, nil
}

func (m *Machine) handleText(_ context.Context, sess Session, transcript string) (Turn, error) {
	sess.Pending.Text = transcript
	return Turn{Session: sess.to(StateAwaitingTime), Reply: replyAskTime(transcript)}, nil
}

func (m *Machine) handleTime(ctx context.Context, sess Session, transcript string) (Turn, error) {
	now := m.clock()

	p := sess.Pending
	p.Time = when.ParseTime(transcript, now)
	p.ID = m.ids.Next()
	p.Completed = false
	if p.Date == "" {
		p.Date = when.Today(now)
	}

	t := task.Task{ID: p.ID, Text: p.Text, Date: p.Date, Time: p.Time, Completed: p.Completed}

	id, err := m.store.Put(ctx, t)
	if err != nil {
		return Turn{}, fmt.Errorf("save task: %w", err)
	}
	t.ID = id

	return Turn{Session: sess.to(StateIdle), Reply: replyAdded(t), Created: &t}, nil
}

func (m *Machine) handleDeleteDate(ctx context.Context, sess Session, transcript string) (Turn, error) {
	date := when.ParseDate(transcript, m.clock())

	tasks, err := m.store.QueryByDate(ctx, date)
	if err != nil {
		return Turn{}, fmt.Errorf("query tasks for %s: %w", date, err)
	}

	if len(tasks) == 0 {
		return Turn{Session: sess.to(StateIdle), Reply: replyNoTasksOn(date)}, nil
	}

	sess.Pending.Candidates = tasks
	return Turn{
		Session: sess.to(StateAwaitingDeleteConfirmation),
		Reply:   replyDeleteCandidates(when.FormatDate(date), tasks),
	}, nil
}

func (m *Machine) handleDeleteConfirmation(ctx context.Context, sess Session, transcript string) (Turn, error) {
	target, ok := pickCandidate(transcript, sess.Pending.Candidates)
	if !ok {
		return Turn{Session: sess.to(StateIdle), Reply: ReplyUnidentified}, nil
	}

	// A task already removed elsewhere still counts as deleted.
	if err := m.store.DeleteByID(ctx, target.ID); err != nil && !errors.Is(err, task.ErrNotFound) {
		return Turn{}, fmt.Errorf("delete task %d: %w", target.ID, err)
	}

	return Turn{Session: sess.to(StateIdle), Reply: replyDeleted(target), Deleted: &target}, nil
}

var numberPattern = regexp.MustCompile(`\b(\d+)\b`)

// pickCandidate resolves which listed task the transcript refers to. A number
// anywhere in the transcript is taken as a 1-based position and text matching
// is skipped; otherwise the first candidate whose text appears in the
// transcript wins.
func pickCandidate(transcript string, candidates []task.Task) (task.Task, bool) {
	if m := numberPattern.FindStringSubmatch(transcript); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(candidates) {
			return task.Task{}, false
		}
		return candidates[n-1], true
	}

	for _, c := range candidates {
		text := strings.ToLower(strings.TrimSpace(c.Text))
		if text != "" && strings.Contains(transcript, text) {
			return c, true
		}
	}

	return task.Task{}, false
}

func say(reply string) handlerFunc {
	return func(_ context.Context, sess Session, _ string) (Turn, error) {
		return Turn{Session: sess.to(StateIdle), Reply: reply}, nil
	}
}
