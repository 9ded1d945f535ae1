package ime

import (
	"testing"

	"kanakey/internal/keycode"
	"kanakey/internal/keyevent"
)

func TestKeyvalToRune(t *testing.T) {
	tests := []struct {
		name   string
		keyval uint32
		want   rune
	}{
		{"space", 0x20, ' '},
		{"letter A", 0x41, 'A'},
		{"letter a", 0x61, 'a'},
		{"digit 0", 0x30, '0'},
		{"tilde", 0x7e, '~'},
		{"nbsp", 0xa0, '\u00a0'},
		{"yen", 0xa5, '¥'},
		{"unicode euro", 0x010020ac, '€'},
		{"unicode hiragana", 0x01003042, 'あ'},
		{"backspace", KeysymBackSpace, 0},
		{"return", KeysymReturn, 0},
		{"F1", KeysymF1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keyvalToRune(tt.keyval); got != tt.want {
				t.Errorf("keyvalToRune(0x%x) = %q, want %q", tt.keyval, got, tt.want)
			}
		})
	}
}

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name   string
		keyval uint32
		evdev  uint32
		state  uint32
		code   keycode.Code
		mods   keyevent.Modifiers
		chars  string
	}{
		{"letter", 'k', 37, 0, keycode.K, 0, "k"},
		{"shifted digit", '!', 2, IBusShiftMask, keycode.Digit1, keyevent.ModShift, "!"},
		{"return", KeysymReturn, 28, 0, keycode.Return, 0, "\r"},
		{"keypad enter", KeysymKPEnter, 96, 0, keycode.Return, 0, "\r"},
		{"backspace", KeysymBackSpace, 14, 0, keycode.Delete, 0, "\x7f"},
		{"escape", KeysymEscape, 1, 0, keycode.Escape, 0, "\x1b"},
		{"left arrow", KeysymLeft, 105, 0, keycode.Left, 0, "\uf702"},
		{"F7", KeysymF1 + 6, 65, 0, keycode.F7, 0, "\uf70a"},
		{"control letter", 's', 31, IBusControlMask, keycode.S, keyevent.ModControl, "\x13"},
		{"option letter", 0x01000301, 18, IBusMod1Mask, keycode.E, keyevent.ModOption, "\u0301"},
		{"muhenkan", 0xff22, 94, 0, keycode.JISEisu, 0, ""},
		{"caps lock", 'A', 30, IBusLockMask, keycode.A, keyevent.ModCapsLock, "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, mods, chars, ok := translateKey(tt.keyval, tt.evdev, tt.state)
			if !ok {
				t.Fatalf("translateKey(0x%x, %d, 0x%x) not handled", tt.keyval, tt.evdev, tt.state)
			}
			if code != tt.code {
				t.Errorf("code = %s, want %s", code, tt.code)
			}
			if mods != tt.mods {
				t.Errorf("mods = %s, want %s", mods, tt.mods)
			}
			if chars != tt.chars {
				t.Errorf("chars = %q, want %q", chars, tt.chars)
			}
		})
	}
}

func TestTranslateKeyIgnored(t *testing.T) {
	if _, _, _, ok := translateKey('k', 37, IBusReleaseMask); ok {
		t.Error("release events must not be handled")
	}
	// Left shift on its own.
	if _, _, _, ok := translateKey(0xffe1, 42, 0); ok {
		t.Error("bare modifiers must not be handled")
	}
}

func TestStateToModifiers(t *testing.T) {
	got := stateToModifiers(IBusShiftMask | IBusControlMask | IBusMod1Mask | IBusMod4Mask)
	want := keyevent.ModShift | keyevent.ModControl | keyevent.ModOption | keyevent.ModCommand
	if got != want {
		t.Errorf("stateToModifiers = %s, want %s", got, want)
	}
	if m := stateToModifiers(0); m != 0 {
		t.Errorf("stateToModifiers(0) = %s", m)
	}
}
