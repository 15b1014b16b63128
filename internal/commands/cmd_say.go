package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasktalk/internal/assistant"
	"github.com/colonyops/tasktalk/internal/core/styles"
	"github.com/colonyops/tasktalk/pkg/iojson"
)

// SayCmd sends a single utterance to the assistant.
type SayCmd struct {
	flags *Flags
	app   *assistant.App

	json bool
}

// NewSayCmd creates a new say command.
func NewSayCmd(flags *Flags, app *assistant.App) *SayCmd {
	return &SayCmd{flags: flags, app: app}
}

// Register adds the say command to the application.
func (cmd *SayCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "say",
		Usage:     "Send one line to the assistant and print the reply",
		UsageText: "tasktalk say [--json] <text...>",
		Description: `Handles a single turn. The dialogue state is not kept between
invocations, so use "tasktalk chat" for multi-step flows.

Examples:
  tasktalk say show my tasks
  tasktalk say --json help`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the full reply as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SayCmd) run(ctx context.Context, c *cli.Command) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("usage: tasktalk say <text...>")
	}

	reply := cmd.app.Assistant.HandleTranscript(ctx, text)

	if cmd.json {
		return iojson.WriteLine(c.Root().Writer, reply)
	}

	if reply.Failed {
		_, _ = fmt.Fprintln(c.Root().Writer, styles.ErrorStyle.Render(reply.Text))
		return cli.Exit("", 1)
	}
	_, _ = fmt.Fprintln(c.Root().Writer, styles.AssistantStyle.Render(reply.Text))
	return nil
}
