// Package composition is the reference state machine that maps user
// intents to host edit actions.
package composition

import (
	"golang.org/x/text/width"

	"kanakey/internal/action"
	"kanakey/internal/intent"
	"kanakey/internal/keyevent"
)

// Env is the context a transition depends on besides the state.
type Env struct {
	Locale     keyevent.Locale
	Suggestion bool
}

// Transition returns the action for in in state s and the callback that
// picks the next state once the action has been applied. It is total: every
// state and intent yields a valid action.
func Transition(s action.State, in intent.Intent, env Env) (action.Action, action.Callback) {
	switch in.Kind {
	case intent.Unrecognized:
		return action.New(action.PassThrough), action.StayCallback()
	case intent.BeginDeadKey:
		return action.Diacritic(in.Mark), action.StayCallback()
	}

	switch s {
	case action.Composing:
		return composing(in, env)
	case action.Previewing:
		return previewing(in, env)
	case action.Selecting:
		return selecting(in)
	case action.ReplaceSuggestion:
		return replaceSuggestion(in)
	default:
		return none(in, env)
	}
}

func none(in intent.Intent, env Env) (action.Action, action.Callback) {
	japanese := env.Locale == keyevent.Japanese
	switch in.Kind {
	case intent.LiteralInput:
		if !japanese {
			return action.Direct(in.Text), stay()
		}
		return action.Insert(in.Text), to(action.Composing)
	case intent.Digit:
		if !japanese {
			return action.Direct(in.DigitText()), stay()
		}
		return action.InsertPiece(digitPiece(in)), to(action.Composing)
	case intent.WordDelimiter:
		if japanese && in.FullWidth {
			return action.Direct("　"), stay()
		}
	case intent.ToggleLatin:
		return action.Locale(keyevent.English), stay()
	case intent.ToggleKana:
		return action.Locale(keyevent.Japanese), stay()
	case intent.RequestSuggestion:
		if env.Suggestion {
			return action.New(action.RequestPredictiveSuggestion), stay()
		}
	}
	return action.New(action.PassThrough), stay()
}

func composing(in intent.Intent, env Env) (action.Action, action.Callback) {
	switch in.Kind {
	case intent.LiteralInput:
		return action.Insert(in.Text), stay()
	case intent.Digit:
		return action.InsertPiece(digitPiece(in)), stay()
	case intent.Backspace:
		return removeLast()
	case intent.Commit:
		return action.New(action.CommitComposition), to(action.None)
	case intent.WordDelimiter:
		return enterSelection()
	case intent.Cancel:
		return action.New(action.StopComposition), to(action.None)
	case intent.Tab:
		return action.New(action.EnterPreview), to(action.Previewing)
	case intent.ToggleLatin:
		return action.CommitAndLocale(keyevent.English), to(action.None)
	case intent.Navigate:
		if in.Direction == intent.Up || in.Direction == intent.Down {
			return enterSelection()
		}
	case intent.Function:
		return submitFunction(in.Slot)
	case intent.ShiftSegment:
		return action.Segment(in.Offset), to(action.Selecting)
	case intent.RequestSuggestion:
		if env.Suggestion {
			return action.New(action.RequestReplaceSuggestion), to(action.ReplaceSuggestion)
		}
	}
	// ToggleKana, Forget, left/right and disabled suggestions.
	return consume()
}

func previewing(in intent.Intent, env Env) (action.Action, action.Callback) {
	switch in.Kind {
	case intent.LiteralInput:
		return action.Recompose(in.Text), to(action.Composing)
	case intent.Digit:
		return action.Recompose(in.DigitText()), to(action.Composing)
	case intent.Cancel:
		return action.New(action.HideCandidateWindow), to(action.Composing)
	case intent.Tab:
		return consume()
	}
	return composing(in, env)
}

func selecting(in intent.Intent) (action.Action, action.Callback) {
	switch in.Kind {
	case intent.LiteralInput:
		return action.SubmitAndInsert(in.Text), to(action.Composing)
	case intent.Digit:
		n := in.Digit
		if n == 0 {
			n = 10
		}
		return action.CandidateNumber(n), action.BasedOnSubmit(action.None, action.Selecting)
	case intent.Commit:
		return action.New(action.SubmitCandidate), action.BasedOnSubmit(action.None, action.Selecting)
	case intent.WordDelimiter:
		return action.New(action.SelectNextCandidate), stay()
	case intent.Navigate:
		switch in.Direction {
		case intent.Up:
			return action.New(action.SelectPrevCandidate), stay()
		case intent.Left:
			return action.Segment(-1), stay()
		case intent.Right:
			return action.Segment(1), stay()
		default:
			return action.New(action.SelectNextCandidate), stay()
		}
	case intent.Tab:
		return action.New(action.SubmitCandidateAndEnterPreview), action.BasedOnSubmit(action.None, action.Previewing)
	case intent.Cancel:
		return action.New(action.HideCandidateWindow), to(action.Composing)
	case intent.Backspace:
		return removeLast()
	case intent.Forget:
		return action.New(action.ForgetMemory), stay()
	case intent.Function:
		return submitFunction(in.Slot)
	case intent.ShiftSegment:
		return action.Segment(in.Offset), stay()
	case intent.ToggleLatin:
		return action.CommitAndLocale(keyevent.English), to(action.None)
	}
	return consume()
}

func replaceSuggestion(in intent.Intent) (action.Action, action.Callback) {
	switch in.Kind {
	case intent.WordDelimiter:
		return action.New(action.SelectNextSuggestion), stay()
	case intent.Navigate:
		switch in.Direction {
		case intent.Down:
			return action.New(action.SelectNextSuggestion), stay()
		case intent.Up:
			return action.New(action.SelectPrevSuggestion), stay()
		}
	case intent.Commit:
		return action.New(action.SubmitSuggestion), to(action.Composing)
	case intent.Cancel:
		return action.New(action.HideSuggestionWindow), to(action.Composing)
	case intent.LiteralInput:
		return action.Insert(in.Text), to(action.Composing)
	case intent.Digit:
		return action.InsertPiece(digitPiece(in)), to(action.Composing)
	case intent.Backspace:
		return removeLast()
	case intent.ToggleLatin:
		return action.CommitAndLocale(keyevent.English), to(action.None)
	}
	return consume()
}

func submitFunction(slot intent.Slot) (action.Action, action.Callback) {
	switch slot {
	case intent.F6:
		return action.New(action.SubmitHiragana), to(action.None)
	case intent.F7:
		return action.New(action.SubmitKatakana), to(action.None)
	case intent.F8:
		return action.New(action.SubmitHalfWidthKatakana), to(action.None)
	}
	return consume()
}

// digitPiece keeps the typed digit and records its full-width form as the
// intended conversion.
func digitPiece(in intent.Intent) action.Piece {
	d := in.DigitText()
	return action.Piece{Input: d, Intention: width.Widen.String(d)}
}

func removeLast() (action.Action, action.Callback) {
	return action.New(action.RemoveLastCompositionUnit), action.BasedOnBackspace(action.None, action.Composing)
}

func enterSelection() (action.Action, action.Callback) {
	return action.New(action.EnterSelection), to(action.Selecting)
}

func consume() (action.Action, action.Callback) {
	return action.New(action.Consume), stay()
}

func stay() action.Callback { return action.StayCallback() }

func to(s action.State) action.Callback { return action.Transition(s) }
