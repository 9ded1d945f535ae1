// Package intent defines the closed set of user intents a key event
// classifies to. Exactly one Intent is produced per key event.
package intent

import (
	"fmt"
	"strconv"

	"kanakey/internal/diacritic"
)

// Kind discriminates an Intent.
type Kind uint8

const (
	// Unrecognized is the fallback for events that match no rule and carry
	// no printable character. Downstream passes it through to the host.
	Unrecognized Kind = iota
	LiteralInput
	Backspace
	Commit
	WordDelimiter
	Cancel
	Tab
	ToggleLatin
	ToggleKana
	Navigate
	Function
	Digit
	ShiftSegment
	RequestSuggestion
	BeginDeadKey
	Forget

	numKinds
)

var kindNames = [...]string{
	Unrecognized:      "unrecognized",
	LiteralInput:      "literal-input",
	Backspace:         "backspace",
	Commit:            "commit",
	WordDelimiter:     "word-delimiter",
	Cancel:            "cancel",
	Tab:               "tab",
	ToggleLatin:       "toggle-latin-mode",
	ToggleKana:        "toggle-kana-mode",
	Navigate:          "navigate",
	Function:          "function",
	Digit:             "digit",
	ShiftSegment:      "shift-segment-boundary",
	RequestSuggestion: "request-suggestion",
	BeginDeadKey:      "begin-dead-key",
	Forget:            "forget",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds returns every intent kind.
func Kinds() []Kind {
	out := make([]Kind, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		out = append(out, k)
	}
	return out
}

// Direction is a navigation direction.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "direction(" + strconv.Itoa(int(d)) + ")"
}

// Slot is a conversion function key slot.
type Slot uint8

const (
	F6 Slot = 6 // hiragana
	F7 Slot = 7 // katakana
	F8 Slot = 8 // half-width katakana
)

// Intent is the result of classifying one key event. Only the fields
// relevant to Kind are set.
type Intent struct {
	Kind Kind

	Text      string         // LiteralInput
	FullWidth bool           // WordDelimiter
	Direction Direction      // Navigate
	Slot      Slot           // Function
	Digit     int            // Digit, 0..9
	Offset    int            // ShiftSegment
	Mark      diacritic.Mark // BeginDeadKey

	// Prefix is text that must be delivered as literal input before this
	// intent is acted on. It carries a dead-key mark that failed to combine
	// with a key that did not itself classify to literal input.
	Prefix string
}

// Constructors.

func NewUnrecognized() Intent { return Intent{Kind: Unrecognized} }
func NewLiteral(text string) Intent { return Intent{Kind: LiteralInput, Text: text} }
func NewBackspace() Intent { return Intent{Kind: Backspace} }
func NewCommit() Intent { return Intent{Kind: Commit} }
func NewCancel() Intent { return Intent{Kind: Cancel} }
func NewTab() Intent { return Intent{Kind: Tab} }
func NewToggleLatin() Intent { return Intent{Kind: ToggleLatin} }
func NewToggleKana() Intent { return Intent{Kind: ToggleKana} }
func NewSuggest() Intent { return Intent{Kind: RequestSuggestion} }
func NewForget() Intent { return Intent{Kind: Forget} }

func NewWordDelimiter(fullWidth bool) Intent {
	return Intent{Kind: WordDelimiter, FullWidth: fullWidth}
}

func NewNavigate(d Direction) Intent {
	return Intent{Kind: Navigate, Direction: d}
}

func NewFunction(s Slot) Intent {
	return Intent{Kind: Function, Slot: s}
}

func NewDigit(n int) Intent {
	return Intent{Kind: Digit, Digit: n}
}

func NewShiftSegment(offset int) Intent {
	return Intent{Kind: ShiftSegment, Offset: offset}
}

func NewBeginDeadKey(m diacritic.Mark) Intent {
	return Intent{Kind: BeginDeadKey, Mark: m}
}

// WithPrefix returns a copy of i carrying prefix.
func (i Intent) WithPrefix(prefix string) Intent {
	i.Prefix = prefix
	return i
}

// DigitText returns the digit as a one-character string.
func (i Intent) DigitText() string {
	return strconv.Itoa(i.Digit)
}

// String formats i the way it is written in replay scripts and the
// journal, e.g. literal-input("á") or navigate(up).
func (i Intent) String() string {
	var s string
	switch i.Kind {
	case LiteralInput:
		s = fmt.Sprintf("%s(%s)", i.Kind, strconv.QuoteToGraphic(i.Text))
	case WordDelimiter:
		if i.FullWidth {
			s = i.Kind.String() + "(full)"
		} else {
			s = i.Kind.String() + "(half)"
		}
	case Navigate:
		s = fmt.Sprintf("%s(%s)", i.Kind, i.Direction)
	case Function:
		s = fmt.Sprintf("%s(%d)", i.Kind, i.Slot)
	case Digit:
		s = fmt.Sprintf("%s(%d)", i.Kind, i.Digit)
	case ShiftSegment:
		s = fmt.Sprintf("%s(%+d)", i.Kind, i.Offset)
	case BeginDeadKey:
		s = fmt.Sprintf("%s(%s)", i.Kind, strconv.QuoteToGraphic(i.Mark.String()))
	default:
		s = i.Kind.String()
	}
	if i.Prefix != "" {
		s = fmt.Sprintf("%s+%s", strconv.QuoteToGraphic(i.Prefix), s)
	}
	return s
}

// Redacted formats i without typed text: literal input shows only its kind
// and a carried prefix shows as prefix+.
func (i Intent) Redacted() string {
	r := i
	r.Prefix = ""
	var s string
	if r.Kind == LiteralInput {
		s = r.Kind.String()
	} else {
		s = r.String()
	}
	if i.Prefix != "" {
		s = "prefix+" + s
	}
	return s
}
