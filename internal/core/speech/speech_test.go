package speech

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognitionResult_Transcript(t *testing.T) {
	tests := []struct {
		name   string
		result RecognitionResult
		want   string
	}{
		{
			name:   "empty",
			result: RecognitionResult{},
			want:   "",
		},
		{
			name: "first alternative per segment",
			result: RecognitionResult{Segments: []Segment{
				{Alternatives: []Alternative{{Transcript: "Add "}, {Transcript: "And "}}},
				{Alternatives: []Alternative{{Transcript: "Task"}}},
			}},
			want: "add task",
		},
		{
			name: "segment without alternatives skipped",
			result: RecognitionResult{Segments: []Segment{
				{},
				{Alternatives: []Alternative{{Transcript: "HELP"}}},
			}},
			want: "help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Transcript())
		})
	}
}

func TestTextResult(t *testing.T) {
	assert.Equal(t, "show my tasks", TextResult("Show My Tasks").Transcript())
}

func TestRecognitionError_Error(t *testing.T) {
	assert.Equal(t, "speech recognition error: network", RecognitionError{Code: "network"}.Error())
	assert.Equal(t, "speech recognition error: not-allowed: denied", RecognitionError{Code: "not-allowed", Message: "denied"}.Error())
}

func TestDefaultRecognitionSettings(t *testing.T) {
	s := DefaultRecognitionSettings()
	assert.True(t, s.Continuous)
	assert.True(t, s.InterimResults)
	assert.Equal(t, "en-US", s.Lang)
}

func TestPickVoice(t *testing.T) {
	voices := []Voice{
		{Name: "Daniel"},
		{Name: "Google UK English Female"},
		{Name: "Samantha female"},
	}

	v, ok := PickVoice(voices, "female")
	require.True(t, ok)
	assert.Equal(t, "Google UK English Female", v.Name)

	_, ok = PickVoice(voices, "robot")
	assert.False(t, ok)

	_, ok = PickVoice(voices, "")
	assert.False(t, ok)
}

func TestSpeaker_Say(t *testing.T) {
	var got []Utterance
	synth := SynthesizerFunc(func(_ context.Context, u Utterance) error {
		got = append(got, u)
		return nil
	})

	s := NewSpeaker(synth, DefaultVoiceSettings())
	require.NoError(t, s.Say(context.Background(), "hello"))

	s.SetVoices([]Voice{{Name: "Alex"}, {Name: "Karen Female"}})
	require.NoError(t, s.Say(context.Background(), "again"))

	require.Len(t, got, 2)
	assert.Equal(t, Utterance{Text: "hello", Pitch: 1.2, Rate: 1.0, Lang: "en-US"}, got[0])
	assert.Equal(t, "Karen Female", got[1].Voice)
}

func TestSpeaker_nil_synth_discards(t *testing.T) {
	s := NewSpeaker(nil, DefaultVoiceSettings())
	assert.NoError(t, s.Say(context.Background(), "nobody hears this"))
}

func TestListener(t *testing.T) {
	l := NewListener()

	var changes []bool
	l.OnChange(func(listening bool) { changes = append(changes, listening) })

	assert.False(t, l.Listening())
	assert.True(t, l.Start())
	assert.False(t, l.Start())
	assert.True(t, l.Listening())

	l.Restart()
	assert.True(t, l.Listening())

	assert.True(t, l.Stop())
	assert.False(t, l.Stop())

	assert.Equal(t, []bool{true, false, true, false}, changes)
}

func TestListener_Restart_from_stopped(t *testing.T) {
	l := NewListener()
	l.Restart()
	assert.True(t, l.Listening())
}
