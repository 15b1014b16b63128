package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasktalk/internal/core/config"
	"github.com/colonyops/tasktalk/internal/core/styles"
	"github.com/colonyops/tasktalk/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "tasktalk config validate [options]",
				Description: "Loads the configuration file without applying it and reports every invalid field.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationReport struct {
	Valid  bool              `json:"valid"`
	Path   string            `json:"path"`
	Errors []validationIssue `json:"errors,omitempty"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	report := validateConfig(cmd.flags.ConfigPath, cmd.flags.DataDir)

	if cmd.format == "json" {
		if err := iojson.Write(c.Root().Writer, report); err != nil {
			return err
		}
	} else {
		writeReport(c.Root().Writer, report)
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

// validateConfig loads the file at path and collects its field errors.
func validateConfig(path, dataDir string) validationReport {
	report := validationReport{Path: path}

	cfg, err := config.Load(path, dataDir)
	if err == nil {
		err = cfg.ValidateDeep(path)
	}

	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
		report.Valid = true
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			report.Errors = append(report.Errors, validationIssue{Field: fe.Field, Message: fe.Err.Error()})
		}
	default:
		report.Errors = append(report.Errors, validationIssue{Field: "file", Message: err.Error()})
	}

	return report
}

func writeReport(w io.Writer, report validationReport) {
	for _, issue := range report.Errors {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.ErrorStyle.Render("✗"), issue.Field, issue.Message)
	}

	_, _ = fmt.Fprintln(w)
	if report.Valid {
		_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("✓ Configuration is valid"))
		return
	}
	_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render(fmt.Sprintf("%d error(s) found", len(report.Errors))))
}
