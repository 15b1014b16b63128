package iojson

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Text string `json:"text"`
	Date string `json:"date,omitempty"`
}

func TestWriteLines_round_trip(t *testing.T) {
	var buf bytes.Buffer
	in := []record{{Text: "buy milk", Date: "2025-03-05"}, {Text: "call mom"}}

	require.NoError(t, WriteLines(&buf, in))
	assert.Equal(t, "{\"text\":\"buy milk\",\"date\":\"2025-03-05\"}\n{\"text\":\"call mom\"}\n", buf.String())

	out, err := Decode[record](&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecode_reports_bad_record(t *testing.T) {
	_, err := Decode[record](strings.NewReader(`{"text":"ok"} {"text":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 2")
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteError(&buf, "task not found", map[string]any{"id": 7}))
	assert.JSONEq(t, `{"message":"task not found","data":{"id":7}}`, buf.String())
}

func TestLineReader_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"text\":\"a\"}\n{\"text\":\"b\"}\n"), 0o644))

	lr := &LineReader[record]{fileFlagValue: path}
	got, err := lr.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []record{{Text: "a"}, {Text: "b"}}, got)
}

func TestLineReader_stdin(t *testing.T) {
	lr := &LineReader[record]{stdin: strings.NewReader(`{"text":"piped"}`)}
	got, err := lr.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []record{{Text: "piped"}}, got)
}
