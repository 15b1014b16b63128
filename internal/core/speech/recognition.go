// Package speech models the speech recognition and synthesis adapters the
// assistant talks through. Concrete engines live outside the process (a
// browser, a TTS daemon); this package carries their data and the small
// amount of state the assistant keeps about them.
package speech

import (
	"fmt"
	"strings"
)

// Alternative is one candidate transcript for a recognized segment.
type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Segment is one recognized span of speech. Alternatives are ordered best
// first.
type Segment struct {
	Alternatives []Alternative `json:"alternatives"`
	Final        bool          `json:"final,omitempty"`
}

// RecognitionResult is a recognition event: every segment heard so far in the
// current session.
type RecognitionResult struct {
	Segments []Segment `json:"segments"`
}

// Transcript joins the best alternative of every segment, lowercased.
// Segments without alternatives are skipped.
func (r RecognitionResult) Transcript() string {
	var b strings.Builder
	for _, seg := range r.Segments {
		if len(seg.Alternatives) == 0 {
			continue
		}
		b.WriteString(strings.ToLower(seg.Alternatives[0].Transcript))
	}
	return b.String()
}

// TextResult wraps plain text as a single-segment result.
func TextResult(text string) RecognitionResult {
	return RecognitionResult{
		Segments: []Segment{{Alternatives: []Alternative{{Transcript: text}}, Final: true}},
	}
}

// RecognitionError is reported by the recognizer when it gives up, e.g.
// "no-speech", "network" or "not-allowed".
type RecognitionError struct {
	Code    string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (e RecognitionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("speech recognition error: %s", e.Code)
	}
	return fmt.Sprintf("speech recognition error: %s: %s", e.Code, e.Message)
}

// RecognitionSettings configures the remote recognizer.
type RecognitionSettings struct {
	Continuous     bool   `json:"continuous"`
	InterimResults bool   `json:"interim_results"`
	Lang           string `json:"lang"`
}

// DefaultRecognitionSettings listens continuously with interim results in
// US English.
func DefaultRecognitionSettings() RecognitionSettings {
	return RecognitionSettings{
		Continuous:     true,
		InterimResults: true,
		Lang:           "en-US",
	}
}
