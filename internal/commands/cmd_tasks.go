package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasktalk/internal/assistant"
	"github.com/colonyops/tasktalk/internal/core/styles"
	"github.com/colonyops/tasktalk/pkg/iojson"
)

func (cmd *TasksCmd) tasks() *assistant.TaskService {
	return cmd.app.Tasks
}

// TasksCmd implements the tasktalk tasks command group.
type TasksCmd struct {
	flags *Flags
	app   *assistant.App

	// ls flags
	listDate string
	listJSON bool

	// add flags
	addText string
	addDate string
	addTime string

	// import flags
	importReader iojson.LineReader[taskRecord]
}

// taskRecord is one line of `tasks import` input.
type taskRecord struct {
	Text string `json:"text"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// NewTasksCmd creates a new tasks command.
func NewTasksCmd(flags *Flags, app *assistant.App) *TasksCmd {
	return &TasksCmd{flags: flags, app: app}
}

// Register adds the tasks command to the application.
func (cmd *TasksCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "tasks",
		Usage: "Manage scheduled tasks",
		Description: `Task commands work on the same store the assistant uses.

Examples:
  tasktalk tasks ls                                   # every task
  tasktalk tasks ls --date 2025-03-05                 # one day
  tasktalk tasks add --text "buy milk" --time 17:00   # today at 5 PM
  tasktalk tasks rm 1741190400000                     # delete by id
  tasktalk tasks ls --json | tasktalk tasks import    # copy tasks`,
		Commands: []*cli.Command{
			cmd.listCmd(),
			cmd.addCmd(),
			cmd.removeCmd(),
			cmd.importCmd(),
		},
	})

	return app
}

func (cmd *TasksCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List tasks",
		UsageText: "tasktalk tasks ls [--date YYYY-MM-DD] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "date",
				Aliases:     []string{"d"},
				Usage:       "only tasks on this date (YYYY-MM-DD)",
				Destination: &cmd.listDate,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print tasks as JSON lines",
				Destination: &cmd.listJSON,
			},
		},
		Action: cmd.runList,
	}
}

func (cmd *TasksCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Schedule a task",
		UsageText: "tasktalk tasks add --text <text> [--date YYYY-MM-DD] [--time HH:MM]",
		Description: `Adds a task and prints it as a JSON line. The date defaults to today and
the time to the top of the current hour.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "text",
				Aliases:     []string{"t"},
				Usage:       "what to do",
				Required:    true,
				Destination: &cmd.addText,
			},
			&cli.StringFlag{
				Name:        "date",
				Aliases:     []string{"d"},
				Usage:       "date (YYYY-MM-DD)",
				Destination: &cmd.addDate,
			},
			&cli.StringFlag{
				Name:        "time",
				Usage:       "time of day (HH:MM, 24-hour)",
				Destination: &cmd.addTime,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TasksCmd) removeCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "Delete a task",
		UsageText: "tasktalk tasks rm <id>",
		Action:    cmd.runRemove,
	}
}

func (cmd *TasksCmd) importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Add tasks from JSON lines",
		UsageText: "tasktalk tasks import [-f file]",
		Description: `Reads {"text", "date", "time"} records and adds each one. Records that
fail validation are reported as error lines and skipped.`,
		Flags:  []cli.Flag{cmd.importReader.Flag()},
		Action: cmd.runImport,
	}
}

func (cmd *TasksCmd) runList(ctx context.Context, c *cli.Command) error {
	tasks, err := cmd.tasks().List(ctx, cmd.listDate)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	w := c.Root().Writer
	if cmd.listJSON {
		return iojson.WriteLines(w, tasks)
	}

	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, styles.MutedStyle.Render("no tasks"))
		return nil
	}
	for _, t := range tasks {
		_, _ = fmt.Fprintln(w, renderTask(t))
	}
	return nil
}

func (cmd *TasksCmd) runAdd(ctx context.Context, c *cli.Command) error {
	t, err := cmd.tasks().Add(ctx, cmd.addText, cmd.addDate, cmd.addTime)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

func (cmd *TasksCmd) runRemove(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tasktalk tasks rm <id>")
	}

	id, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task id %q", c.Args().Get(0))
	}

	if err := cmd.tasks().Delete(ctx, id); err != nil {
		return fmt.Errorf("remove task: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "deleted")
	return nil
}

func (cmd *TasksCmd) runImport(ctx context.Context, c *cli.Command) error {
	records, err := cmd.importReader.ReadAll()
	if err != nil {
		return fmt.Errorf("read tasks: %w", err)
	}

	added, err := importTasks(ctx, cmd.tasks(), records, c.Root().Writer)
	if err != nil {
		return err
	}

	log.Info().Int("added", added).Int("records", len(records)).Msg("tasks imported")
	return nil
}

// importTasks adds every record, writing the created task or an error line
// for each. Only storage failures abort the import.
func importTasks(ctx context.Context, svc *assistant.TaskService, records []taskRecord, w io.Writer) (int, error) {
	added := 0
	for i, r := range records {
		t, err := svc.Add(ctx, r.Text, r.Date, r.Time)
		if err != nil {
			if isValidationError(err) {
				if werr := iojson.WriteError(w, err.Error(), map[string]any{"record": i + 1}); werr != nil {
					return added, werr
				}
				continue
			}
			return added, fmt.Errorf("import record %d: %w", i+1, err)
		}

		added++
		if err := iojson.WriteLine(w, t); err != nil {
			return added, err
		}
	}
	return added, nil
}

func isValidationError(err error) bool {
	var fieldErrs criterio.FieldErrors
	return errors.As(err, &fieldErrs)
}
