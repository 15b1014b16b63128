// Package chatlog keeps the bounded transcript of what the user and the
// assistant said to each other.
package chatlog

import (
	"context"
	"time"
)

// DefaultLimit is the number of messages retained when no limit is configured.
const DefaultLimit = 50

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one line of the transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// EventKind names a change to the log.
type EventKind string

const (
	EventMessage EventKind = "chat.message"
	EventCleared EventKind = "chat.cleared"
)

// Event is delivered to observers after every change. Message is the zero
// value for EventCleared.
type Event struct {
	Kind    EventKind `json:"kind"`
	Message Message   `json:"message"`
}

// Observer receives log events synchronously, in append order.
type Observer func(Event)

// Persister stores the transcript so it survives restarts.
type Persister interface {
	// Append stores a single message.
	Append(ctx context.Context, msg Message) error

	// Recent returns up to limit of the newest messages, oldest first.
	Recent(ctx context.Context, limit int) ([]Message, error)

	// Clear removes every stored message.
	Clear(ctx context.Context) error
}
