package speech

import (
	"context"
	"strings"
	"sync"
)

// Voice is a synthesis voice offered by the speaking engine.
type Voice struct {
	Name    string `json:"name"`
	Lang    string `json:"lang,omitempty"`
	Default bool   `json:"default,omitempty"`
}

// PickVoice returns the first voice whose name contains preferred, compared
// case-insensitively.
func PickVoice(voices []Voice, preferred string) (Voice, bool) {
	if preferred == "" {
		return Voice{}, false
	}
	needle := strings.ToLower(preferred)
	for _, v := range voices {
		if strings.Contains(strings.ToLower(v.Name), needle) {
			return v, true
		}
	}
	return Voice{}, false
}

// VoiceSettings are applied to every utterance.
type VoiceSettings struct {
	Preferred string  `yaml:"preferred" json:"preferred"`
	Pitch     float64 `yaml:"pitch"     json:"pitch"`
	Rate      float64 `yaml:"rate"      json:"rate"`
	Lang      string  `yaml:"lang"      json:"lang"`
}

// DefaultVoiceSettings returns a slightly raised pitch at normal rate.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Preferred: "female",
		Pitch:     1.2,
		Rate:      1.0,
		Lang:      "en-US",
	}
}

// Utterance is one thing to say. An empty Voice leaves the choice to the
// engine.
type Utterance struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Pitch float64 `json:"pitch"`
	Rate  float64 `json:"rate"`
	Lang  string  `json:"lang,omitempty"`
}

// Synthesizer speaks utterances. Speak may return before the audio finishes.
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
}

// SynthesizerFunc adapts a function to a Synthesizer.
type SynthesizerFunc func(ctx context.Context, u Utterance) error

func (f SynthesizerFunc) Speak(ctx context.Context, u Utterance) error {
	return f(ctx, u)
}

// Discard drops every utterance.
var Discard Synthesizer = SynthesizerFunc(func(context.Context, Utterance) error { return nil })

// Speaker turns reply text into utterances using the configured settings and
// the best matching voice the engine has offered.
type Speaker struct {
	mu       sync.RWMutex
	synth    Synthesizer
	settings VoiceSettings
	voice    Voice
	hasVoice bool
}

// NewSpeaker creates a Speaker. A nil synth discards everything.
func NewSpeaker(synth Synthesizer, settings VoiceSettings) *Speaker {
	if synth == nil {
		synth = Discard
	}
	return &Speaker{synth: synth, settings: settings}
}

// SetSynthesizer replaces the engine. A nil synth discards everything.
func (s *Speaker) SetSynthesizer(synth Synthesizer) {
	if synth == nil {
		synth = Discard
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synth = synth
}

// SetVoices records the voices the engine offers and re-picks the preferred
// one. Engines may report their voices late, so this can be called at any
// time.
func (s *Speaker) SetVoices(voices []Voice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice, s.hasVoice = PickVoice(voices, s.settings.Preferred)
}

// SetSettings replaces the voice settings. The current voice is kept.
func (s *Speaker) SetSettings(settings VoiceSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Utterance builds the utterance for text without speaking it.
func (s *Speaker) Utterance(text string) Utterance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.utterance(text)
}

func (s *Speaker) utterance(text string) Utterance {
	u := Utterance{
		Text:  text,
		Pitch: s.settings.Pitch,
		Rate:  s.settings.Rate,
		Lang:  s.settings.Lang,
	}
	if s.hasVoice {
		u.Voice = s.voice.Name
	}
	return u
}

// Say speaks text.
func (s *Speaker) Say(ctx context.Context, text string) error {
	s.mu.RLock()
	synth, u := s.synth, s.utterance(text)
	s.mu.RUnlock()
	return synth.Speak(ctx, u)
}
