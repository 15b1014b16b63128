package assistant

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/tasktalk/internal/core/chatlog"
	"github.com/colonyops/tasktalk/internal/core/config"
	"github.com/colonyops/tasktalk/internal/core/conversation"
	"github.com/colonyops/tasktalk/internal/core/eventbus"
	"github.com/colonyops/tasktalk/internal/core/speech"
	"github.com/colonyops/tasktalk/internal/core/task"
	"github.com/colonyops/tasktalk/internal/data/db"
	"github.com/colonyops/tasktalk/internal/data/stores"
)

// App is the central entry point for all tasktalk operations.
// Commands and the server consume App instead of cherry-picking raw
// dependencies.
type App struct {
	Assistant *Assistant
	Tasks     *TaskService

	Bus    *eventbus.EventBus
	Config *config.Config
	DB     *db.DB
}

// NewApp builds the stores, the chat log and the assistant on top of an open
// database, and replays persisted chat history. Replies are discarded until
// a synthesizer is attached with Assistant.SetSynthesizer.
func NewApp(ctx context.Context, cfg *config.Config, database *db.DB, bus *eventbus.EventBus, log zerolog.Logger) (*App, error) {
	taskStore := stores.NewTaskStore(database)
	chatStore := stores.NewChatStore(database, cfg.Assistant.HistoryLimit)

	chat := chatlog.New(cfg.Assistant.HistoryLimit,
		chatlog.WithPersister(chatStore),
		chatlog.WithLogger(log),
	)
	if err := chat.Load(ctx); err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	ids := task.NewIDSource(nil)
	machine := conversation.NewMachine(taskStore,
		conversation.WithLexicon(cfg.Lexicon()),
		conversation.WithIDSource(ids),
	)

	a := New(
		machine,
		chat,
		speech.NewSpeaker(nil, cfg.Voice),
		speech.NewListener(),
		bus,
		log,
	)

	bus.SubscribeConfigReloaded(func(p eventbus.ConfigReloadedPayload) {
		if p.Config == nil {
			return
		}
		a.SetLexicon(p.Config.Lexicon())
		a.SetVoiceSettings(p.Config.Voice)
		log.Info().Str("wake_phrase", p.Config.Assistant.WakePhrase).Msg("assistant config reloaded")
	})

	return &App{
		Assistant: a,
		Tasks:     NewTaskService(taskStore, bus, ids, nil, log),
		Bus:       bus,
		Config:    cfg,
		DB:        database,
	}, nil
}
