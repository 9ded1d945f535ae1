package ime

import (
	"kanakey/internal/keycode"
	"kanakey/internal/keyevent"
)

// IBus key event state masks
const (
	IBusShiftMask   uint32 = 1 << 0
	IBusLockMask    uint32 = 1 << 1
	IBusControlMask uint32 = 1 << 2
	IBusMod1Mask    uint32 = 1 << 3 // Alt
	IBusMod4Mask    uint32 = 1 << 6 // Super/Meta
	IBusReleaseMask uint32 = 1 << 30
)

// Common X11 key symbols
const (
	KeysymBackSpace = 0xff08
	KeysymTab       = 0xff09
	KeysymReturn    = 0xff0d
	KeysymEscape    = 0xff1b
	KeysymLeft      = 0xff51
	KeysymUp        = 0xff52
	KeysymRight     = 0xff53
	KeysymDown      = 0xff54
	KeysymKPEnter   = 0xff8d
	KeysymF1        = 0xffbe
	KeysymF12       = 0xffc9
	KeysymDelete    = 0xffff
)

// evdevKeys maps Linux evdev key codes, as IBus reports them, to the
// physical key codes the classifier works with. Keys missing here, such as
// bare modifiers, are not handled by the engine.
var evdevKeys = map[uint32]keycode.Code{
	1:   keycode.Escape,
	2:   keycode.Digit1,
	3:   keycode.Digit2,
	4:   keycode.Digit3,
	5:   keycode.Digit4,
	6:   keycode.Digit5,
	7:   keycode.Digit6,
	8:   keycode.Digit7,
	9:   keycode.Digit8,
	10:  keycode.Digit9,
	11:  keycode.Digit0,
	12:  keycode.Minus,
	13:  keycode.Equal,
	14:  keycode.Delete,
	15:  keycode.Tab,
	16:  keycode.Q,
	17:  keycode.W,
	18:  keycode.E,
	19:  keycode.R,
	20:  keycode.T,
	21:  keycode.Y,
	22:  keycode.U,
	23:  keycode.I,
	24:  keycode.O,
	25:  keycode.P,
	26:  keycode.LeftBracket,
	27:  keycode.RightBracket,
	28:  keycode.Return,
	30:  keycode.A,
	31:  keycode.S,
	32:  keycode.D,
	33:  keycode.F,
	34:  keycode.G,
	35:  keycode.H,
	36:  keycode.J,
	37:  keycode.K,
	38:  keycode.L,
	39:  keycode.Semicolon,
	40:  keycode.Quote,
	41:  keycode.Grave,
	43:  keycode.Backslash,
	44:  keycode.Z,
	45:  keycode.X,
	46:  keycode.C,
	47:  keycode.V,
	48:  keycode.B,
	49:  keycode.N,
	50:  keycode.M,
	51:  keycode.Comma,
	52:  keycode.Period,
	53:  keycode.Slash,
	57:  keycode.Space,
	61:  keycode.F3,
	63:  keycode.F5,
	64:  keycode.F6,
	65:  keycode.F7,
	66:  keycode.F8,
	67:  keycode.F9,
	68:  keycode.F10,
	// KEY_RO
	89:  keycode.JISUnderscore,
	// KEY_HENKAN
	92:  keycode.JISKana,
	// KEY_KATAKANAHIRAGANA
	93:  keycode.JISKana,
	// KEY_MUHENKAN
	94:  keycode.JISEisu,
	// KEY_KPENTER
	96:  keycode.Return,
	103: keycode.Up,
	105: keycode.Left,
	106: keycode.Right,
	108: keycode.Down,
	// KEY_HANGEUL, the kana key on Apple JIS keyboards
	122: keycode.JISKana,
	// KEY_HANJA, the eisu key on Apple JIS keyboards
	123: keycode.JISEisu,
	124: keycode.JISYen,
}

// translateKey converts an IBus key event into the classifier's terms. It
// reports false for releases and keys the engine does not handle.
func translateKey(keyval, evdev, state uint32) (keycode.Code, keyevent.Modifiers, string, bool) {
	if state&IBusReleaseMask != 0 {
		return 0, 0, "", false
	}
	code, ok := evdevKeys[evdev]
	if !ok {
		return 0, 0, "", false
	}
	mods := stateToModifiers(state)
	return code, mods, keyvalToChars(keyval, mods), true
}

func stateToModifiers(state uint32) keyevent.Modifiers {
	var m keyevent.Modifiers
	if state&IBusShiftMask != 0 {
		m |= keyevent.ModShift
	}
	if state&IBusLockMask != 0 {
		m |= keyevent.ModCapsLock
	}
	if state&IBusControlMask != 0 {
		m |= keyevent.ModControl
	}
	if state&IBusMod1Mask != 0 {
		m |= keyevent.ModOption
	}
	if state&IBusMod4Mask != 0 {
		m |= keyevent.ModCommand
	}
	return m
}

// keyvalToChars produces the text a macOS key event would carry for the
// same key: control chords become C0 characters and editing keys their
// ASCII or private-use codes.
func keyvalToChars(keyval uint32, mods keyevent.Modifiers) string {
	switch keyval {
	case KeysymBackSpace:
		return "\x7f"
	case KeysymTab:
		return "\t"
	case KeysymReturn, KeysymKPEnter:
		return "\r"
	case KeysymEscape:
		return "\x1b"
	case KeysymUp:
		return "\uf700"
	case KeysymDown:
		return "\uf701"
	case KeysymLeft:
		return "\uf702"
	case KeysymRight:
		return "\uf703"
	case KeysymDelete:
		return "\uf728"
	}
	if keyval >= KeysymF1 && keyval <= KeysymF12 {
		return string(rune(0xf704 + keyval - KeysymF1))
	}

	r := keyvalToRune(keyval)
	if r == 0 {
		return ""
	}
	if mods.Control() {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return string(r & 0x1f)
		case r >= '@' && r <= '_':
			return string(r - '@')
		}
	}
	return string(r)
}

// keyvalToRune converts X11 keysym to Unicode rune.
func keyvalToRune(keyval uint32) rune {
	// Direct Unicode mapping for Latin-1 range
	if keyval >= 0x20 && keyval <= 0x7e {
		return rune(keyval)
	}

	// Extended Latin (ISO 8859-1)
	if keyval >= 0xa0 && keyval <= 0xff {
		return rune(keyval)
	}

	// Unicode keysyms (0x01000000 + codepoint)
	if keyval >= 0x01000000 && keyval <= 0x0110ffff {
		return rune(keyval - 0x01000000)
	}

	return 0
}
