package action

import (
	"fmt"
	"strings"
)

// State is the composition state.
type State uint8

const (
	// None means nothing is being composed.
	None State = iota
	// Composing means unconverted text is marked.
	Composing
	// Previewing shows the first candidate inline without a window.
	Previewing
	// Selecting shows the candidate window for the current segment.
	Selecting
	// ReplaceSuggestion shows the replacement suggestion window.
	ReplaceSuggestion

	numStates
)

var stateNames = [...]string{
	None:              "none",
	Composing:         "composing",
	Previewing:        "previewing",
	Selecting:         "selecting",
	ReplaceSuggestion: "replace-suggestion",
}

func (s State) String() string {
	if s < numStates {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// States returns every state.
func States() []State {
	return []State{None, Composing, Previewing, Selecting, ReplaceSuggestion}
}

// ParseState parses a state name as produced by String.
func ParseState(s string) (State, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return None, fmt.Errorf("unknown state %q", s)
}

// CallbackKind discriminates a Callback.
type CallbackKind uint8

const (
	// Stay keeps the current state.
	Stay CallbackKind = iota
	// To moves to a fixed state.
	To
	// OnBackspace branches on whether the composition is empty after the
	// action was applied.
	OnBackspace
	// OnSubmit branches on whether submitting a candidate consumed the
	// whole composition.
	OnSubmit
)

// Callback selects the state that follows an action. It is plain data and
// is resolved only after the host has applied the action.
type Callback struct {
	Kind CallbackKind

	// Target is the state for To.
	Target State

	// IfEmpty and IfNotEmpty are the branches for OnBackspace and OnSubmit.
	IfEmpty    State
	IfNotEmpty State
}

// StayCallback keeps the current state.
func StayCallback() Callback { return Callback{Kind: Stay} }

// Transition moves to s.
func Transition(s State) Callback { return Callback{Kind: To, Target: s} }

// BasedOnBackspace branches on the composition being empty after a
// removal.
func BasedOnBackspace(ifEmpty, ifNotEmpty State) Callback {
	return Callback{Kind: OnBackspace, IfEmpty: ifEmpty, IfNotEmpty: ifNotEmpty}
}

// BasedOnSubmit branches on a candidate submission leaving nothing behind.
func BasedOnSubmit(ifEmpty, ifRemaining State) Callback {
	return Callback{Kind: OnSubmit, IfEmpty: ifEmpty, IfNotEmpty: ifRemaining}
}

// Resolve returns the state that follows current, given whether the
// composition is empty once the action has been applied.
func (c Callback) Resolve(current State, compositionEmpty bool) State {
	switch c.Kind {
	case To:
		return c.Target
	case OnBackspace, OnSubmit:
		if compositionEmpty {
			return c.IfEmpty
		}
		return c.IfNotEmpty
	}
	return current
}

func (c Callback) String() string {
	switch c.Kind {
	case To:
		return "transition(" + c.Target.String() + ")"
	case OnBackspace:
		return fmt.Sprintf("on-backspace(empty=%s, else=%s)", c.IfEmpty, c.IfNotEmpty)
	case OnSubmit:
		return fmt.Sprintf("on-submit(empty=%s, else=%s)", c.IfEmpty, c.IfNotEmpty)
	}
	return "stay"
}
