package logging

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	turnIDKey    contextKey = "turn_id"
)

// WithSessionID tags the context with the conversation it belongs to.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithTurnID tags the context with a single transcript-to-reply turn.
func WithTurnID(ctx context.Context, turnID string) context.Context {
	return context.WithValue(ctx, turnIDKey, turnID)
}

// GetSessionID returns the session ID, or "" if none is set.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// GetTurnID returns the turn ID, or "" if none is set.
func GetTurnID(ctx context.Context) string {
	id, _ := ctx.Value(turnIDKey).(string)
	return id
}
