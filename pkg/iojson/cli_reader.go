package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// LineReader reads a stream of JSON values, one record each, from the file
// named by its flag or from piped stdin.
type LineReader[T any] struct {
	fileFlagValue string
	stdin         io.Reader
}

// Flag returns the --file flag bound to the reader.
func (lr *LineReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to a JSON lines file (reads from stdin if not provided)",
		Destination: &lr.fileFlagValue,
	}
}

// ReadAll decodes every record in the input.
func (lr *LineReader[T]) ReadAll() ([]T, error) {
	var reader io.Reader

	switch {
	case lr.fileFlagValue != "":
		f, err := os.Open(lr.fileFlagValue)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	case lr.stdin != nil:
		reader = lr.stdin
	default:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
		}
		reader = os.Stdin
	}

	return Decode[T](reader)
}

// Decode reads JSON values from r until EOF.
func Decode[T any](r io.Reader) ([]T, error) {
	dec := json.NewDecoder(r)

	var out []T
	for {
		var v T
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("decode record %d: %w", len(out)+1, err)
		}
		out = append(out, v)
	}
}
