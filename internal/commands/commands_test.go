package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tasktalk/internal/assistant"
	"github.com/colonyops/tasktalk/internal/core/chatlog"
	"github.com/colonyops/tasktalk/internal/core/config"
	"github.com/colonyops/tasktalk/internal/core/conversation"
	"github.com/colonyops/tasktalk/internal/core/eventbus/testbus"
	"github.com/colonyops/tasktalk/internal/core/task"
	"github.com/colonyops/tasktalk/internal/data/db"
)

func newTestApp(t *testing.T) *assistant.App {
	t.Helper()

	dir := t.TempDir()
	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	cfg.DataDir = dir

	app, err := assistant.NewApp(context.Background(), &cfg, database, testbus.New(t).EventBus, zerolog.Nop())
	require.NoError(t, err)
	return app
}

func TestRenderMessage(t *testing.T) {
	t.Run("labels by role", func(t *testing.T) {
		out := renderMessage(chatlog.Message{Role: chatlog.RoleAssistant, Text: "hello"})
		assert.True(t, strings.HasPrefix(out, "assistant"), out)
		assert.Contains(t, out, "hello")

		out = renderMessage(chatlog.Message{Role: chatlog.RoleUser, Text: "add task"})
		assert.True(t, strings.HasPrefix(out, "you"), out)
	})

	t.Run("indents continuation lines", func(t *testing.T) {
		out := renderMessage(chatlog.Message{Role: chatlog.RoleAssistant, Text: "first\nsecond"})
		lines := strings.Split(out, "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[1], strings.Repeat(" ", labelWidth+1)+"second"), lines[1])
	})
}

func TestRenderTask(t *testing.T) {
	out := renderTask(task.Task{ID: 42, Text: "buy milk", Date: "2025-03-05", Time: "17:00"})

	assert.True(t, strings.HasPrefix(out, "42"), out)
	assert.Contains(t, out, "Wednesday, March 5, 2025 5:00 PM")
	assert.True(t, strings.HasSuffix(out, "buy milk"), out)
}

func TestRunREPL_Piped(t *testing.T) {
	app := newTestApp(t)

	in := strings.NewReader("help\nexit\nshow my tasks\n")
	var out bytes.Buffer

	err := runREPL(context.Background(), app.Assistant, in, &out, replOptions{})
	require.NoError(t, err)

	history := app.Assistant.History()
	require.Len(t, history, 2, "lines after exit are not handled")
	assert.Equal(t, "help", history[0].Text)
	assert.Equal(t, conversation.ReplyHelp, history[1].Text)

	assert.Contains(t, out.String(), "you")
	assert.Contains(t, out.String(), "I can help you manage your tasks.")
	assert.NotContains(t, out.String(), "tasktalk", "no banner when not interactive")
}

func TestRunREPL_MultiTurn(t *testing.T) {
	app := newTestApp(t)

	in := strings.NewReader("add task\nmarch 5\nwater the plants\n5 pm\n")
	var out bytes.Buffer

	require.NoError(t, runREPL(context.Background(), app.Assistant, in, &out, replOptions{}))

	tasks, err := app.Tasks.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "water the plants", tasks[0].Text)
	assert.Equal(t, "17:00", tasks[0].Time)
	assert.Equal(t, conversation.StateIdle, app.Assistant.Session().State)
}

func TestRunREPL_InteractiveReplaysHistory(t *testing.T) {
	app := newTestApp(t)
	app.Assistant.HandleTranscript(context.Background(), "help")

	var out bytes.Buffer
	err := runREPL(context.Background(), app.Assistant, strings.NewReader(""), &out, replOptions{
		interactive: true,
		replay:      1,
	})
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "tasktalk")
	assert.Contains(t, s, "I can help you manage your tasks.")
	assert.NotContains(t, s, padRight("you", labelWidth)+" help", "only the last message is replayed")
}

func TestRunREPL_CancelledContext(t *testing.T) {
	app := newTestApp(t)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = w.Close()
		_ = r.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runREPL(ctx, app.Assistant, r, &bytes.Buffer{}, replOptions{})
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("REPL did not stop after cancel")
	}
}

func TestImportTasks(t *testing.T) {
	app := newTestApp(t)

	records := []taskRecord{
		{Text: "buy milk", Date: "2025-03-05", Time: "17:00"},
		{Text: "  ", Date: "2025-03-05", Time: "09:00"},
		{Text: "call mom", Date: "2025-03-06", Time: "08:30"},
	}

	var out bytes.Buffer
	added, err := importTasks(context.Background(), app.Tasks, records, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"text":"buy milk"`)
	assert.Contains(t, lines[1], `"message"`)
	assert.Contains(t, lines[1], `"record":2`)
	assert.Contains(t, lines[2], `"text":"call mom"`)

	tasks, err := app.Tasks.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()

	write := func(t *testing.T, body string) string {
		t.Helper()
		path := filepath.Join(dir, t.Name()+".yaml")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	t.Run("valid", func(t *testing.T) {
		report := validateConfig(write(t, "assistant:\n  wake_phrase: hey tasks\n"), dir)
		assert.True(t, report.Valid)
		assert.Empty(t, report.Errors)
	})

	t.Run("missing file uses defaults", func(t *testing.T) {
		report := validateConfig(filepath.Join(dir, "nope.yaml"), dir)
		assert.True(t, report.Valid)
	})

	t.Run("field errors", func(t *testing.T) {
		report := validateConfig(write(t, "theme: neon\nvoice:\n  pitch: 5\n"), dir)
		assert.False(t, report.Valid)

		fields := make([]string, 0, len(report.Errors))
		for _, e := range report.Errors {
			fields = append(fields, e.Field)
		}
		assert.ElementsMatch(t, []string{"theme", "voice.pitch"}, fields)
	})

	t.Run("unparseable file", func(t *testing.T) {
		report := validateConfig(write(t, "assistant: [\n"), dir)
		assert.False(t, report.Valid)
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "file", report.Errors[0].Field)
	})

	t.Run("text report", func(t *testing.T) {
		var buf bytes.Buffer
		writeReport(&buf, validationReport{Errors: []validationIssue{{Field: "theme", Message: "unknown theme"}}})
		assert.Contains(t, buf.String(), "theme: unknown theme")
		assert.Contains(t, buf.String(), "1 error(s) found")
	})
}
