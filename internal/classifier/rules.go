package classifier

import (
	"unicode"

	"kanakey/internal/deadkey"
	"kanakey/internal/fullwidth"
	"kanakey/internal/intent"
	"kanakey/internal/keycode"
	"kanakey/internal/keyevent"
)

// Rule is one entry of the priority list.
type Rule struct {
	Name    string
	Match   func(ev keyevent.Event) bool
	Produce func(ev keyevent.Event) intent.Intent
}

var controlChords = map[keycode.Code]intent.Intent{
	keycode.H:         intent.NewBackspace(),
	keycode.P:         intent.NewNavigate(intent.Up),
	keycode.M:         intent.NewCommit(),
	keycode.N:         intent.NewNavigate(intent.Down),
	keycode.F:         intent.NewNavigate(intent.Right),
	keycode.I:         intent.NewShiftSegment(-1),
	keycode.O:         intent.NewShiftSegment(1),
	keycode.J:         intent.NewFunction(intent.F6),
	keycode.K:         intent.NewFunction(intent.F7),
	keycode.Semicolon: intent.NewFunction(intent.F8),
	keycode.S:         intent.NewSuggest(),
}

var functionKeys = map[keycode.Code]intent.Slot{
	keycode.F6: intent.F6,
	keycode.F7: intent.F7,
	keycode.F8: intent.F8,
}

var arrowKeys = map[keycode.Code]intent.Direction{
	keycode.Left:  intent.Left,
	keycode.Right: intent.Right,
	keycode.Down:  intent.Down,
	keycode.Up:    intent.Up,
}

// The digit row codes are neither contiguous nor ordered.
var digitKeys = map[keycode.Code]int{
	keycode.Digit1: 1,
	keycode.Digit2: 2,
	keycode.Digit3: 3,
	keycode.Digit4: 4,
	keycode.Digit5: 5,
	keycode.Digit6: 6,
	keycode.Digit7: 7,
	keycode.Digit8: 8,
	keycode.Digit9: 9,
	keycode.Digit0: 0,
}

var rules = []Rule{
	{
		Name: "option-diacritic",
		Match: func(ev keyevent.Event) bool {
			m := ev.Modifiers
			if !m.Option() || m.Any(keyevent.ModCommand|keyevent.ModControl) {
				return false
			}
			_, ok := deadkey.MarkForKey(ev.Code)
			return ok
		},
		Produce: func(ev keyevent.Event) intent.Intent {
			mark, _ := deadkey.MarkForKey(ev.Code)
			if ev.Modifiers.Shift() {
				return intent.NewLiteral(mark.String())
			}
			return intent.NewBeginDeadKey(mark)
		},
	},
	{
		Name: "control-chord",
		Match: func(ev keyevent.Event) bool {
			if !ev.Modifiers.Control() {
				return false
			}
			_, ok := controlChords[ev.Code]
			return ok
		},
		Produce: func(ev keyevent.Event) intent.Intent {
			return controlChords[ev.Code]
		},
	},
	fixed("return", keycode.Return, intent.NewCommit),
	fixed("tab", keycode.Tab, intent.NewTab),
	{
		Name:    "space",
		Match:   isCode(keycode.Space),
		Produce: space,
	},
	{
		Name:  "delete",
		Match: isCode(keycode.Delete),
		Produce: func(ev keyevent.Event) intent.Intent {
			if ev.Modifiers.Control() {
				return intent.NewForget()
			}
			return intent.NewBackspace()
		},
	},
	fixed("escape", keycode.Escape, intent.NewCancel),
	{
		Name:    "yen",
		Match:   isCode(keycode.JISYen),
		Produce: yen,
	},
	{
		Name: "comma-period",
		Match: func(ev keyevent.Event) bool {
			return (ev.Code == keycode.Comma || ev.Code == keycode.Period) && !ev.Modifiers.Shift()
		},
		Produce: func(ev keyevent.Event) intent.Intent {
			if ev.Code == keycode.Comma {
				return intent.NewLiteral(remap(ev, ","))
			}
			return intent.NewLiteral(remap(ev, "."))
		},
	},
	{
		Name: "function-row",
		Match: func(ev keyevent.Event) bool {
			_, ok := functionKeys[ev.Code]
			return ok
		},
		Produce: func(ev keyevent.Event) intent.Intent {
			return intent.NewFunction(functionKeys[ev.Code])
		},
	},
	fixed("eisu", keycode.JISEisu, intent.NewToggleLatin),
	fixed("kana", keycode.JISKana, intent.NewToggleKana),
	{
		Name: "arrow",
		Match: func(ev keyevent.Event) bool {
			_, ok := arrowKeys[ev.Code]
			return ok
		},
		Produce: func(ev keyevent.Event) intent.Intent {
			return intent.NewNavigate(arrowKeys[ev.Code])
		},
	},
	{
		Name: "digit-row",
		Match: func(ev keyevent.Event) bool {
			if ev.Modifiers.Any(keyevent.ModShift | keyevent.ModOption) {
				return false
			}
			_, ok := digitKeys[ev.Code]
			return ok
		},
		Produce: func(ev keyevent.Event) intent.Intent {
			return intent.NewDigit(digitKeys[ev.Code])
		},
	},
	{
		Name:    "default",
		Match:   func(keyevent.Event) bool { return true },
		Produce: literalOrUnrecognized,
	},
}

func fixed(name string, code keycode.Code, produce func() intent.Intent) Rule {
	return Rule{
		Name:    name,
		Match:   isCode(code),
		Produce: func(keyevent.Event) intent.Intent { return produce() },
	}
}

func isCode(code keycode.Code) func(keyevent.Event) bool {
	return func(ev keyevent.Event) bool { return ev.Code == code }
}

// space prefers full width unless exactly one of the half-width preference
// and shift is set.
func space(ev keyevent.Event) intent.Intent {
	return intent.NewWordDelimiter(!(ev.Settings.HalfWidthSpace != ev.Modifiers.Shift()))
}

// yen resolves the JIS yen key. Shift always types a bar; otherwise the
// backslash preference and option pick between backslash and yen.
func yen(ev keyevent.Event) intent.Intent {
	var ch string
	switch {
	case ev.Modifiers.Shift():
		ch = "|"
	case ev.Settings.Backslash != ev.Modifiers.Option():
		ch = "\\"
	default:
		ch = "¥"
	}
	return intent.NewLiteral(remap(ev, ch))
}

// literalOrUnrecognized is the shared fallthrough: host characters become
// literal input when printable.
func literalOrUnrecognized(ev keyevent.Event) intent.Intent {
	if !printable(ev.Characters) {
		return intent.NewUnrecognized()
	}
	return intent.NewLiteral(remap(ev, ev.Characters))
}

func remap(ev keyevent.Event, text string) string {
	return fullwidth.Remap(text, ev.Locale, ev.Settings.CommaPeriod)
}

// printable reports whether s is non-empty and made only of letters,
// marks, numbers, symbols and punctuation.
func printable(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.In(r, unicode.L, unicode.M, unicode.N, unicode.S, unicode.P) {
			return false
		}
	}
	return true
}
