package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies session_id and turn_id from the event's context.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if id := GetSessionID(ctx); id != "" {
		e.Str("session_id", id)
	}
	if id := GetTurnID(ctx); id != "" {
		e.Str("turn_id", id)
	}
}
