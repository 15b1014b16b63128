package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assistant:\n  wake_phrase: first\n"), 0o644))

	loaded := make(chan *Config, 4)
	w, err := NewWatcher(path, t.TempDir(), zerolog.Nop(), func(c *Config) { loaded <- c })
	require.NoError(t, err)
	defer w.Close() //nolint:errcheck

	require.NoError(t, os.WriteFile(path, []byte("assistant:\n  wake_phrase: second\n"), 0o644))

	select {
	case cfg := <-loaded:
		assert.Equal(t, "second", cfg.Assistant.WakePhrase)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
}

func TestWatcher_SkipsInvalidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	loaded := make(chan *Config, 4)
	w, err := NewWatcher(path, t.TempDir(), zerolog.Nop(), func(c *Config) { loaded <- c })
	require.NoError(t, err)
	defer w.Close() //nolint:errcheck

	require.NoError(t, os.WriteFile(path, []byte("assistant: [broken"), 0o644))

	select {
	case <-loaded:
		t.Fatal("invalid config must not be delivered")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	loaded := make(chan *Config, 4)
	w, err := NewWatcher(path, t.TempDir(), zerolog.Nop(), func(c *Config) { loaded <- c })
	require.NoError(t, err)
	defer w.Close() //nolint:errcheck

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0o644))

	select {
	case <-loaded:
		t.Fatal("unrelated file triggered reload")
	case <-time.After(300 * time.Millisecond):
	}
}
