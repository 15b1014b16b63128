package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasktalk/internal/assistant"
	"github.com/colonyops/tasktalk/internal/core/config"
	"github.com/colonyops/tasktalk/internal/core/eventbus"
	"github.com/colonyops/tasktalk/internal/core/logging"
	"github.com/colonyops/tasktalk/internal/server"
)

// ServeCmd runs the HTTP and WebSocket server.
type ServeCmd struct {
	flags *Flags
	app   *assistant.App

	addr     string
	noReload bool
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags, app *assistant.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve the JSON API and the browser speech bridge",
		UsageText: "tasktalk serve [--addr host:port] [--no-reload]",
		Description: `Starts the HTTP server. A browser page connected to /ws does the speech
recognition and synthesis; everything else runs here.

The config file is watched and the wake phrase, lexicon and voice settings
are reloaded when it changes.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides server.addr)",
				Sources:     cli.EnvVars("TASKTALK_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.BoolFlag{
				Name:        "no-reload",
				Usage:       "do not watch the config file",
				Destination: &cmd.noReload,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvCfg := cmd.app.Config.Server
	if cmd.addr != "" {
		srvCfg.Addr = cmd.addr
	}

	if !cmd.noReload {
		watcher, err := config.NewWatcher(cmd.flags.ConfigPath, cmd.flags.DataDir, logging.Component("config-watcher"), func(cfg *config.Config) {
			cmd.app.Bus.PublishConfigReloaded(eventbus.ConfigReloadedPayload{Config: cfg})
		})
		if err != nil {
			log.Warn().Err(err).Msg("config hot reload disabled")
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	srv := server.New(cmd.app, srvCfg, log.Logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
