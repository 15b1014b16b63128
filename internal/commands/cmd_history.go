package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasktalk/internal/assistant"
	"github.com/colonyops/tasktalk/internal/core/styles"
	"github.com/colonyops/tasktalk/pkg/iojson"
)

// HistoryCmd implements the tasktalk history command group.
type HistoryCmd struct {
	flags *Flags
	app   *assistant.App

	showJSON bool
}

// NewHistoryCmd creates a new history command.
func NewHistoryCmd(flags *Flags, app *assistant.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application.
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "history",
		Usage: "Inspect or clear the chat transcript",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print the retained chat messages",
				UsageText: "tasktalk history show [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "print messages as JSON lines",
						Destination: &cmd.showJSON,
					},
				},
				Action: cmd.runShow,
			},
			{
				Name:      "clear",
				Usage:     "Delete every chat message",
				UsageText: "tasktalk history clear",
				Action:    cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *HistoryCmd) runShow(_ context.Context, c *cli.Command) error {
	messages := cmd.app.Assistant.History()
	w := c.Root().Writer

	if cmd.showJSON {
		return iojson.WriteLines(w, messages)
	}

	if len(messages) == 0 {
		_, _ = fmt.Fprintln(w, styles.MutedStyle.Render("no messages"))
		return nil
	}
	for _, m := range messages {
		_, _ = fmt.Fprintln(w, renderMessage(m))
	}
	return nil
}

func (cmd *HistoryCmd) runClear(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Assistant.ClearHistory(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "cleared")
	return nil
}
