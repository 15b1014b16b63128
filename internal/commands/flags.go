package commands

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasktalk/internal/core/config"
)

const appName = "tasktalk"

// Flags carries the global flag values. Config is filled in by the root
// Before hook, so it is nil for commands that skip config loading.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	Config *config.Config
}

// Bind returns the global flags, each writing into f. Every flag can also
// be set through a TASKTALK_* environment variable.
func (f *Flags) Bind() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     cli.EnvVars("TASKTALK_LOG_LEVEL"),
			Value:       "info",
			Destination: &f.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "log file, - for stderr (default <data-dir>/tasktalk.log)",
			Sources:     cli.EnvVars("TASKTALK_LOG_FILE"),
			Destination: &f.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "config file",
			Sources:     cli.EnvVars("TASKTALK_CONFIG"),
			Value:       DefaultConfigPath(),
			Destination: &f.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "directory holding the database and log",
			Sources:     cli.EnvVars("TASKTALK_DATA_DIR"),
			Value:       DefaultDataDir(),
			Destination: &f.DataDir,
		},
	}
}

// DefaultConfigPath is $XDG_CONFIG_HOME/tasktalk/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdgHome("XDG_CONFIG_HOME", ".config"), appName, "config.yaml")
}

// DefaultDataDir is $XDG_DATA_HOME/tasktalk.
func DefaultDataDir() string {
	return filepath.Join(xdgHome("XDG_DATA_HOME", ".local", "share"), appName)
}

// LogFilePath is --log-file when given, otherwise tasktalk.log inside the
// data directory. "-" means stderr.
func (f *Flags) LogFilePath() string {
	if f.LogFile != "" {
		return f.LogFile
	}
	return filepath.Join(f.DataDir, appName+".log")
}

// xdgHome reads an XDG base directory variable, falling back to a path
// under the user's home.
func xdgHome(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(append([]string{home}, fallback...)...)
}
