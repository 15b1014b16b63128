package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasktalk/internal/assistant"
	"github.com/colonyops/tasktalk/internal/commands"
	"github.com/colonyops/tasktalk/internal/core/config"
	"github.com/colonyops/tasktalk/internal/core/eventbus"
	"github.com/colonyops/tasktalk/internal/core/logging"
	"github.com/colonyops/tasktalk/internal/core/styles"
	"github.com/colonyops/tasktalk/internal/data/db"
	"github.com/colonyops/tasktalk/internal/data/stores"
	"github.com/colonyops/tasktalk/pkg/logutils"
)

func main() {
	ctx := context.Background()

	config.LoadDotEnv()

	var (
		logCloser func()
		tasktalk  = &assistant.App{}
		database  *db.DB
		busCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "tasktalk",
		Usage:     "A voice-driven to-do assistant",
		UsageText: "tasktalk [global options] command [command options]",
		Description: `tasktalk keeps a list of scheduled tasks that you manage by talking to it.

Run 'tasktalk chat' to type to the assistant, or 'tasktalk serve' and open a
browser page on /ws to speak to it.`,
		Version: currentBuild().String(),
		Flags:   flags.Bind(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFilePath(), logging.ContextHook{})
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			// config validate reports load errors itself
			if c.Args().First() == "config" {
				return ctx, nil
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Load has already rejected unknown themes.
			palette, _ := styles.Theme(cfg.Theme)
			styles.SetTheme(palette)

			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, err
			}

			bus := eventbus.New(256)
			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			go bus.Start(busCtx)
			eventbus.RegisterDebugLogger(bus, log.Logger)

			built, err := assistant.NewApp(ctx, cfg, database, bus, log.Logger)
			if err != nil {
				return ctx, fmt.Errorf("start assistant: %w", err)
			}

			// Commands were registered with this pointer before Run.
			*tasktalk = *built

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if busCancel != nil {
				busCancel()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewChatCmd(flags, tasktalk).Register(app)
	app = commands.NewSayCmd(flags, tasktalk).Register(app)
	app = commands.NewTasksCmd(flags, tasktalk).Register(app)
	app = commands.NewHistoryCmd(flags, tasktalk).Register(app)
	app = commands.NewServeCmd(flags, tasktalk).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase opens the SQLite database. A corrupt file is moved aside and
// a fresh database is created in its place.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
		Logger:       logging.Component("db"),
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil {
		return database, nil
	}
	if !stores.IsCorruptionError(err) {
		return nil, fmt.Errorf("open database: %w", err)
	}

	backup, rerr := stores.RecoverFromCorruption(cfg.DataDir)
	if rerr != nil {
		return nil, fmt.Errorf("recover corrupt database: %w", rerr)
	}
	log.Warn().Str("backup", backup).Msg("database was corrupt, moved aside and recreated")

	database, err = db.Open(cfg.DataDir, opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}
