package dialog

import (
	"strings"
	"unicode"
)

// State of the follow-up dialog for one channel.
type State int

const (
	Idle State = iota
	AwaitingConfirmation
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	default:
		return "unknown"
	}
}

const (
	PromptText   = "Kann ich dir sonst noch helfen? (Ja/Nein)"
	AcceptText   = "Super! Was möchtest du genauer wissen?"
	DeclineText  = "Alles klar, vielen Dank für deine Anfrage. Bis bald!"
	RepromptText = "Bitte antworte mit \"Ja\" oder \"Nein\"."
)

var (
	affirmative = []string{"ja", "yes"}
	negative    = []string{"nein", "no"}
)

// Dialog tracks whether a channel waits for a yes/no answer after a
// query was answered. The zero value is Idle.
type Dialog struct {
	state State
}

// State returns the current state.
func (d *Dialog) State() State {
	return d.state
}

// Awaiting reports whether the next input belongs to the dialog.
func (d *Dialog) Awaiting() bool {
	return d.state == AwaitingConfirmation
}

// Prompt moves to AwaitingConfirmation and returns the question to show.
func (d *Dialog) Prompt() string {
	d.state = AwaitingConfirmation
	return PromptText
}

// Resolve consumes a user answer while awaiting confirmation and returns
// the bot reply. Unrecognized answers keep the dialog awaiting.
func (d *Dialog) Resolve(input string) string {
	words := splitWords(input)
	switch {
	case containsAny(words, affirmative):
		d.state = Idle
		return AcceptText
	case containsAny(words, negative):
		d.state = Idle
		return DeclineText
	default:
		d.state = AwaitingConfirmation
		return RepromptText
	}
}

// Reset forces the dialog back to Idle.
func (d *Dialog) Reset() {
	d.state = Idle
}

func splitWords(input string) []string {
	return strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsAny(words, tokens []string) bool {
	for _, w := range words {
		for _, t := range tokens {
			if w == t {
				return true
			}
		}
	}
	return false
}

// ContainsWord reports whether input contains any of tokens as a whole
// word, ignoring case.
func ContainsWord(input string, tokens ...string) bool {
	return containsAny(splitWords(input), tokens)
}
