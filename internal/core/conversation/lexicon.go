package conversation

import "strings"

// Intent is what an idle-state transcript asks the assistant to do.
type Intent string

const (
	IntentNone           Intent = ""
	IntentAddTask        Intent = "add_task"
	IntentDeleteTask     Intent = "delete_task"
	IntentListTasks      Intent = "list_tasks"
	IntentCompletedTasks Intent = "completed_tasks"
	IntentHelp           Intent = "help"
)

// DefaultWakePhrase resets the conversation from any state.
const DefaultWakePhrase = "hey darling"

// Rule maps trigger phrases to an intent.
type Rule struct {
	Intent  Intent
	Phrases []string
}

// Lexicon is the phrase table the machine matches transcripts against.
// Matching is a case-insensitive substring test; rules are tried in order and
// the first hit wins.
type Lexicon struct {
	WakePhrase string
	Rules      []Rule
}

// DefaultLexicon returns the built-in phrase table.
func DefaultLexicon() Lexicon {
	return Lexicon{
		WakePhrase: DefaultWakePhrase,
		Rules: []Rule{
			{Intent: IntentAddTask, Phrases: []string{"add task", "add this task"}},
			{Intent: IntentDeleteTask, Phrases: []string{"delete task", "remove task"}},
			{Intent: IntentListTasks, Phrases: []string{"what are my tasks", "show my tasks", "remaining tasks"}},
			{Intent: IntentCompletedTasks, Phrases: []string{"completed tasks"}},
			{Intent: IntentHelp, Phrases: []string{"help"}},
		},
	}
}

// IsWake reports whether the transcript contains the wake phrase.
func (l Lexicon) IsWake(transcript string) bool {
	if l.WakePhrase == "" {
		return false
	}
	return strings.Contains(strings.ToLower(transcript), strings.ToLower(l.WakePhrase))
}

// Match returns the first intent whose phrases appear in the transcript.
func (l Lexicon) Match(transcript string) Intent {
	transcript = strings.ToLower(transcript)
	for _, rule := range l.Rules {
		for _, phrase := range rule.Phrases {
			if phrase != "" && strings.Contains(transcript, strings.ToLower(phrase)) {
				return rule.Intent
			}
		}
	}
	return IntentNone
}

// WithWakePhrase returns a copy using the given wake phrase. An empty phrase
// keeps the current one.
func (l Lexicon) WithWakePhrase(phrase string) Lexicon {
	if phrase != "" {
		l.WakePhrase = phrase
	}
	return l
}

// WithPhrases returns a copy where the phrases of each named intent are
// replaced. Rule order is preserved; unknown intents are ignored.
func (l Lexicon) WithPhrases(overrides map[Intent][]string) Lexicon {
	rules := make([]Rule, len(l.Rules))
	for i, rule := range l.Rules {
		if phrases, ok := overrides[rule.Intent]; ok && len(phrases) > 0 {
			rule.Phrases = append([]string(nil), phrases...)
		}
		rules[i] = rule
	}
	l.Rules = rules
	return l
}

// IsValid reports whether the intent names a known lexicon rule.
func (i Intent) IsValid() bool {
	switch i {
	case IntentAddTask, IntentDeleteTask, IntentListTasks, IntentCompletedTasks, IntentHelp:
		return true
	}
	return false
}
