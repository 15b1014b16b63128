package server

import (
	"github.com/colonyops/tasktalk/internal/assistant"
	"github.com/colonyops/tasktalk/internal/core/chatlog"
	"github.com/colonyops/tasktalk/internal/core/speech"
	"github.com/colonyops/tasktalk/internal/core/task"
)

// FrameType names a WebSocket frame.
type FrameType string

// Inbound frames, sent by the browser.
const (
	FrameRecognitionResult FrameType = "recognition_result"
	FrameRecognitionError  FrameType = "recognition_error"
	FrameText              FrameType = "text"
	FrameStartListening    FrameType = "start_listening"
	FrameStopListening     FrameType = "stop_listening"
	FrameVoices            FrameType = "voices"
)

// Outbound frames, sent by the server.
const (
	FrameHistory     FrameType = "history"
	FrameChatMessage FrameType = "chat_message"
	FrameChatCleared FrameType = "chat_cleared"
	FrameSpeak       FrameType = "speak"
	FrameListening   FrameType = "listening"
	FrameSettings    FrameType = "settings"
	FrameReply       FrameType = "reply"
	FrameTaskCreated FrameType = "task_created"
	FrameTaskDeleted FrameType = "task_deleted"
	FrameError       FrameType = "error"
)

// Frame is the single JSON envelope used in both directions. Only the fields
// relevant to Type are set.
type Frame struct {
	Type FrameType `json:"type"`

	Text      string                      `json:"text,omitempty"`
	Listening *bool                       `json:"listening,omitempty"`
	Result    *speech.RecognitionResult   `json:"result,omitempty"`
	Error     *speech.RecognitionError    `json:"error,omitempty"`
	Voices    []speech.Voice              `json:"voices,omitempty"`
	Message   *chatlog.Message            `json:"message,omitempty"`
	Messages  []chatlog.Message           `json:"messages,omitempty"`
	Utterance *speech.Utterance           `json:"utterance,omitempty"`
	Settings  *speech.RecognitionSettings `json:"settings,omitempty"`
	Reply     *assistant.Reply            `json:"reply,omitempty"`
	Task      *task.Task                  `json:"task,omitempty"`
}

func listeningFrame(on bool) Frame {
	return Frame{Type: FrameListening, Listening: &on}
}

func errorFrame(msg string) Frame {
	return Frame{Type: FrameError, Text: msg}
}

func chatFrame(ev chatlog.Event) Frame {
	if ev.Kind == chatlog.EventCleared {
		return Frame{Type: FrameChatCleared}
	}
	msg := ev.Message
	return Frame{Type: FrameChatMessage, Message: &msg}
}
