// Package iojson reads and writes JSON for command line tools. Records are
// written one per line so output can be piped back in.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Error is the JSON shape of a failed record.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// WriteLine writes obj as a single compact JSON line.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal json line: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteLines writes every item with WriteLine.
func WriteLines[T any](w io.Writer, items []T) error {
	for _, item := range items {
		if err := WriteLine(w, item); err != nil {
			return err
		}
	}
	return nil
}

// WriteError writes msg and data as an Error line.
func WriteError(w io.Writer, msg string, data map[string]any) error {
	return WriteLine(w, Error{Message: msg, Data: data})
}

// Write writes obj as indented JSON.
func Write(w io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}
