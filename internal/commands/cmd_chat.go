package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/tasktalk/internal/assistant"
	"github.com/colonyops/tasktalk/internal/core/chatlog"
	"github.com/colonyops/tasktalk/internal/core/styles"
)

// ChatCmd implements the interactive text chat.
type ChatCmd struct {
	flags *Flags
	app   *assistant.App

	replay int
}

// NewChatCmd creates a new chat command.
func NewChatCmd(flags *Flags, app *assistant.App) *ChatCmd {
	return &ChatCmd{flags: flags, app: app}
}

// Register adds the chat command to the application.
func (cmd *ChatCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "chat",
		Usage:     "Talk to the assistant by typing",
		UsageText: "tasktalk chat [--replay N]",
		Description: `Starts a read-eval-print loop. Each line is handled exactly like a spoken
transcript, so multi-turn flows (adding or deleting a task) work as they do
by voice.

Type "exit" or press Ctrl-D to leave. Lines can also be piped in:

  printf 'add task\nmarch 5\nbuy milk\n5 pm\n' | tasktalk chat`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "replay",
				Usage:       "number of earlier chat messages to print on start",
				Value:       5,
				Destination: &cmd.replay,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ChatCmd) run(ctx context.Context, c *cli.Command) error {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	return runREPL(ctx, cmd.app.Assistant, c.Root().Reader, c.Root().Writer, replOptions{
		interactive: interactive,
		replay:      cmd.replay,
	})
}

type replOptions struct {
	interactive bool
	replay      int
}

// runREPL feeds lines from in to the assistant until EOF, "exit" or ctx is
// cancelled. Replies reach out through the chat log. Typed lines are only
// echoed when in is not a terminal.
func runREPL(ctx context.Context, a *assistant.Assistant, in io.Reader, out io.Writer, opts replOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.interactive {
		_, _ = fmt.Fprintln(out, styles.HeaderStyle.Render("tasktalk")+" "+
			styles.MutedStyle.Render(`type "help" for ideas, "exit" to quit`))

		history := a.History()
		if opts.replay < len(history) {
			history = history[len(history)-opts.replay:]
		}
		for _, m := range history {
			_, _ = fmt.Fprintln(out, renderMessage(m))
		}
	}

	unsubscribe := a.SubscribeHistory(func(ev chatlog.Event) {
		if ev.Kind != chatlog.EventMessage {
			return
		}
		if ev.Message.Role == chatlog.RoleUser && opts.interactive {
			return
		}
		_, _ = fmt.Fprintln(out, renderMessage(ev.Message))
	})
	defer unsubscribe()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		if opts.interactive {
			_, _ = fmt.Fprint(out, styles.PromptStyle.Render("› "))
		}

		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				return nil
			}

			switch strings.ToLower(strings.TrimSpace(line)) {
			case "exit", "quit":
				return nil
			}

			a.HandleTranscript(ctx, line)
		}
	}
}
