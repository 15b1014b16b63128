package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestDefaultPaths_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")

	assert.Equal(t, filepath.Join("/cfg", "tasktalk", "config.yaml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "tasktalk"), DefaultDataDir())
}

func TestDefaultPaths_HomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	assert.Equal(t, filepath.Join(home, ".config", "tasktalk", "config.yaml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join(home, ".local", "share", "tasktalk"), DefaultDataDir())
}

func TestFlags_LogFilePath(t *testing.T) {
	f := &Flags{DataDir: "/data/tasktalk"}
	assert.Equal(t, filepath.Join("/data/tasktalk", "tasktalk.log"), f.LogFilePath())

	f.LogFile = "-"
	assert.Equal(t, "-", f.LogFilePath())
}

func TestFlags_Bind(t *testing.T) {
	f := &Flags{}
	root := &cli.Command{
		Name:   "tasktalk",
		Flags:  f.Bind(),
		Action: func(context.Context, *cli.Command) error { return nil },
	}

	err := root.Run(context.Background(), []string{
		"tasktalk", "--log-level", "debug", "-c", "/tmp/tt/config.yaml", "--data-dir", "/tmp/tt",
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", f.LogLevel)
	assert.Equal(t, "/tmp/tt/config.yaml", f.ConfigPath)
	assert.Equal(t, "/tmp/tt", f.DataDir)
}
