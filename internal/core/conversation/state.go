// Package conversation implements the slot-filling dialogue that turns
// transcripts into task store operations.
package conversation

import "github.com/colonyops/tasktalk/internal/core/task"

// State is the position of a conversation in the slot-filling dialogue.
type State string

const (
	StateIdle                       State = "idle"
	StateAwaitingDate               State = "awaiting_date"
	StateAwaitingTask               State = "awaiting_task"
	StateAwaitingTime               State = "awaiting_time"
	StateAwaitingDeleteDate         State = "awaiting_delete_date"
	StateAwaitingDeleteConfirmation State = "awaiting_delete_confirmation"
)

// Pending accumulates the task being built across turns. During deletion it
// carries the numbered candidate list instead.
type Pending struct {
	Date       string      `json:"date,omitempty"`
	Text       string      `json:"text,omitempty"`
	Time       string      `json:"time,omitempty"`
	ID         int64       `json:"id,omitempty"`
	Completed  bool        `json:"completed"`
	Candidates []task.Task `json:"tasks_to_delete,omitempty"`
}

// IsEmpty reports whether nothing has been accumulated.
func (p Pending) IsEmpty() bool {
	return p.Date == "" && p.Text == "" && p.Time == "" && p.ID == 0 && !p.Completed && len(p.Candidates) == 0
}

// Session is the conversation state carried from one turn to the next.
type Session struct {
	State   State   `json:"state"`
	Pending Pending `json:"pending"`
}

// NewSession returns an idle session with nothing pending.
func NewSession() Session {
	return Session{State: StateIdle}
}

// to moves the session to next. Entering idle always clears the accumulator.
func (s Session) to(next State) Session {
	if next == StateIdle {
		return NewSession()
	}
	s.State = next
	return s
}
