// Package assistant wires the conversation machine to the chat log, the
// speech adapters and the event bus. Every input path (recognizer, REPL,
// HTTP, WebSocket) goes through Assistant.HandleTranscript.
package assistant

import (
	"context"
	"strings"
	"sync"

	"github.com/colonyops/tasktalk/internal/core/chatlog"
	"github.com/colonyops/tasktalk/internal/core/conversation"
	"github.com/colonyops/tasktalk/internal/core/eventbus"
	"github.com/colonyops/tasktalk/internal/core/logging"
	"github.com/colonyops/tasktalk/internal/core/speech"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Reply is the outcome of one turn.
type Reply struct {
	Heard   string              `json:"heard"`
	Text    string              `json:"reply"`
	State   conversation.State  `json:"state"`
	Intent  conversation.Intent `json:"intent,omitempty"`
	Wake    bool                `json:"wake,omitempty"`
	Skipped bool                `json:"skipped,omitempty"`
	Failed  bool                `json:"failed,omitempty"`
}

// Assistant owns the conversation session. Turns are serialized: a turn holds
// the lock from the moment its transcript is logged until its reply is
// spoken and its events are published.
type Assistant struct {
	machine  *conversation.Machine
	chat     *chatlog.Log
	speaker  *speech.Speaker
	listener *speech.Listener
	bus      *eventbus.EventBus
	log      zerolog.Logger

	sessionID string

	mu      sync.Mutex
	session conversation.Session
}

// New creates an Assistant with a fresh idle session.
func New(
	machine *conversation.Machine,
	chat *chatlog.Log,
	speaker *speech.Speaker,
	listener *speech.Listener,
	bus *eventbus.EventBus,
	log zerolog.Logger,
) *Assistant {
	sessionID := uuid.NewString()
	return &Assistant{
		machine:   machine,
		chat:      chat,
		speaker:   speaker,
		listener:  listener,
		bus:       bus,
		log:       log.With().Str("component", "assistant").Logger(),
		sessionID: sessionID,
		session:   conversation.NewSession(),
	}
}

// HandleTranscript runs one turn. Blank transcripts are ignored. A store
// failure never escapes: the session is reset to idle and the assistant
// apologizes instead.
func (a *Assistant) HandleTranscript(ctx context.Context, transcript string) Reply {
	transcript = strings.ToLower(strings.TrimSpace(transcript))
	if transcript == "" {
		return Reply{Skipped: true, State: a.Session().State}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ctx = logging.WithSessionID(ctx, a.sessionID)
	ctx = logging.WithTurnID(ctx, uuid.NewString())

	a.chat.Append(ctx, chatlog.RoleUser, transcript)

	turn, err := a.machine.Handle(ctx, a.session, transcript)
	reply := Reply{Heard: transcript}
	if err != nil {
		a.log.Error().Ctx(ctx).Err(err).Str("state", string(a.session.State)).Msg("turn failed")
		a.session = conversation.NewSession()
		reply.Text = conversation.ReplyStoreFailure
		reply.State = a.session.State
		reply.Failed = true
	} else {
		a.session = turn.Session
		reply.Text = turn.Reply
		reply.State = turn.Session.State
		reply.Intent = turn.Intent
		reply.Wake = turn.Wake
	}

	a.log.Debug().Ctx(ctx).
		Str("heard", transcript).
		Str("state", string(reply.State)).
		Str("intent", string(reply.Intent)).
		Msg("turn handled")

	if err := a.speaker.Say(ctx, reply.Text); err != nil {
		a.log.Warn().Ctx(ctx).Err(err).Msg("speak reply")
	}
	a.chat.Append(ctx, chatlog.RoleAssistant, reply.Text)

	if reply.Wake {
		a.listener.Restart()
	}

	if err == nil {
		if turn.Created != nil {
			a.bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: *turn.Created})
		}
		if turn.Deleted != nil {
			a.bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{Task: *turn.Deleted})
		}
	}

	return reply
}

// HandleRecognition treats every recognition event, interim or final, as one
// turn.
func (a *Assistant) HandleRecognition(ctx context.Context, result speech.RecognitionResult) Reply {
	return a.HandleTranscript(ctx, result.Transcript())
}

// HandleRecognitionError records the failure in the chat log and stops
// listening. Listening resumes only when started again.
func (a *Assistant) HandleRecognitionError(ctx context.Context, rerr speech.RecognitionError) {
	a.log.Warn().Str("code", rerr.Code).Str("message", rerr.Message).Msg("recognition error")
	a.chat.Append(ctx, chatlog.RoleSystem, "Speech recognition error: "+rerr.Code)
	a.listener.Stop()
}

// StartListening reports false if the listener was already running.
func (a *Assistant) StartListening() bool { return a.listener.Start() }

// StopListening reports false if the listener was already stopped.
func (a *Assistant) StopListening() bool { return a.listener.Stop() }

// Listening reports the listener state.
func (a *Assistant) Listening() bool { return a.listener.Listening() }

// OnListeningChange registers fn for listener state changes.
func (a *Assistant) OnListeningChange(fn func(listening bool)) { a.listener.OnChange(fn) }

// History returns the retained chat messages, oldest first.
func (a *Assistant) History() []chatlog.Message { return a.chat.Snapshot() }

// SubscribeHistory registers fn for chat log changes.
func (a *Assistant) SubscribeHistory(fn chatlog.Observer) (unsubscribe func()) {
	return a.chat.Subscribe(fn)
}

// ClearHistory empties the chat log. The conversation session is untouched.
func (a *Assistant) ClearHistory(ctx context.Context) error {
	return a.chat.Clear(ctx)
}

// Session returns a copy of the current session.
func (a *Assistant) Session() conversation.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// SessionID identifies this assistant in logs.
func (a *Assistant) SessionID() string { return a.sessionID }

// SetLexicon swaps the phrase table. It waits for any running turn.
func (a *Assistant) SetLexicon(l conversation.Lexicon) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.machine.SetLexicon(l)
}

// SetVoices records the voices offered by the synthesis engine.
func (a *Assistant) SetVoices(voices []speech.Voice) {
	a.speaker.SetVoices(voices)
}

// SetVoiceSettings replaces pitch, rate, language and voice preference.
func (a *Assistant) SetVoiceSettings(settings speech.VoiceSettings) {
	a.speaker.SetSettings(settings)
}

// SetSynthesizer replaces the speech engine replies are spoken through.
func (a *Assistant) SetSynthesizer(synth speech.Synthesizer) {
	a.speaker.SetSynthesizer(synth)
}
