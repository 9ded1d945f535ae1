package composition

import (
	"errors"
	"fmt"

	"kanakey/internal/action"
	"kanakey/internal/intent"
	"kanakey/internal/keyevent"
	"kanakey/internal/settings"
)

// ErrInvalidAction is returned when the transition table yields an action
// with no valid kind.
var ErrInvalidAction = errors.New("composition: invalid action")

// Host is the text field a Session edits.
type Host interface {
	// Apply performs a on the field.
	Apply(a action.Action) error
	// CompositionEmpty reports whether nothing is marked.
	CompositionEmpty() bool
}

// Step records one applied transition.
type Step struct {
	Intent   intent.Intent
	Action   action.Action
	Callback action.Callback
	From     action.State
	To       action.State
}

// Session owns the composition state and the active locale. It is not safe
// for concurrent use.
type Session struct {
	state  action.State
	locale keyevent.Locale
}

// NewSession returns an idle session in locale l.
func NewSession(l keyevent.Locale) *Session {
	return &Session{state: action.None, locale: l}
}

// State returns the current composition state.
func (s *Session) State() action.State { return s.state }

// Locale returns the active locale.
func (s *Session) Locale() keyevent.Locale { return s.locale }

// SetLocale switches the locale without touching the composition.
func (s *Session) SetLocale(l keyevent.Locale) { s.locale = l }

// Reset returns to the idle state. The locale is kept.
func (s *Session) Reset() { s.state = action.None }

// Handle drives host with in. A prefix on in is delivered as literal input
// first, so it yields one step more. On error the state is left as it was
// before the failing step.
func (s *Session) Handle(in intent.Intent, prefs settings.Snapshot, host Host) ([]Step, error) {
	var steps []Step
	if in.Prefix != "" {
		st, err := s.step(intent.NewLiteral(in.Prefix), prefs, host)
		if err != nil {
			return steps, err
		}
		steps = append(steps, st)
		in.Prefix = ""
	}
	st, err := s.step(in, prefs, host)
	if err != nil {
		return steps, err
	}
	return append(steps, st), nil
}

func (s *Session) step(in intent.Intent, prefs settings.Snapshot, host Host) (Step, error) {
	env := Env{Locale: s.locale, Suggestion: prefs.Suggestion}
	a, cb := Transition(s.state, in, env)
	if !a.Valid() {
		return Step{}, fmt.Errorf("%w: %s in state %s", ErrInvalidAction, in, s.state)
	}
	if err := host.Apply(a); err != nil {
		return Step{}, fmt.Errorf("apply %s: %w", a, err)
	}

	from := s.state
	s.state = cb.Resolve(from, host.CompositionEmpty())
	switch a.Kind {
	case action.SelectLocale, action.CommitAndSelectLocale:
		s.locale = a.Locale
	}
	return Step{Intent: in, Action: a, Callback: cb, From: from, To: s.state}, nil
}
