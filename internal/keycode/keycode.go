// Package keycode names the physical key codes the classifier understands.
//
// Codes are macOS virtual key codes (kVK_*). Other hosts translate their
// native codes into this space before classification; see the IBus adapter
// in internal/ime for the evdev mapping.
package keycode

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Code is a physical key code in the macOS virtual key code space.
type Code uint16

// Letter keys.
const (
	A Code = 0x00
	S Code = 0x01
	D Code = 0x02
	F Code = 0x03
	H Code = 0x04
	G Code = 0x05
	Z Code = 0x06
	X Code = 0x07
	C Code = 0x08
	V Code = 0x09
	B Code = 0x0B
	Q Code = 0x0C
	W Code = 0x0D
	E Code = 0x0E
	R Code = 0x0F
	Y Code = 0x10
	T Code = 0x11
	O Code = 0x1F
	U Code = 0x20
	I Code = 0x22
	P Code = 0x23
	L Code = 0x25
	J Code = 0x26
	K Code = 0x28
	N Code = 0x2D
	M Code = 0x2E
)

// Digit row. The codes are not contiguous and not in numeric order.
const (
	Digit1 Code = 0x12
	Digit2 Code = 0x13
	Digit3 Code = 0x14
	Digit4 Code = 0x15
	Digit6 Code = 0x16
	Digit5 Code = 0x17
	Digit9 Code = 0x19
	Digit7 Code = 0x1A
	Digit8 Code = 0x1C
	Digit0 Code = 0x1D
)

// Punctuation keys (ANSI positions unless noted).
const (
	Equal        Code = 0x18
	Minus        Code = 0x1B
	RightBracket Code = 0x1E
	LeftBracket  Code = 0x21
	Quote        Code = 0x27
	Semicolon    Code = 0x29
	Backslash    Code = 0x2A
	Comma        Code = 0x2B
	Slash        Code = 0x2C
	Period       Code = 0x2F
	Grave        Code = 0x32
)

// Fixed-function keys.
const (
	Return Code = 0x24
	Tab    Code = 0x30
	Space  Code = 0x31
	Delete Code = 0x33
	Escape Code = 0x35
)

// JIS-specific keys.
const (
	JISYen        Code = 0x5D
	JISUnderscore Code = 0x5E
	JISEisu       Code = 0x66
	JISKana       Code = 0x68
)

// Function row.
const (
	F5  Code = 0x60
	F6  Code = 0x61
	F7  Code = 0x62
	F3  Code = 0x63
	F8  Code = 0x64
	F9  Code = 0x65
	F10 Code = 0x6D
)

// Arrow keys.
const (
	Left  Code = 0x7B
	Right Code = 0x7C
	Down  Code = 0x7D
	Up    Code = 0x7E
)

// Max is the largest code the tables in this module reference.
const Max Code = 0x7F

// ErrUnknownKey is returned by Parse for names that are neither known
// key names nor numeric codes.
var ErrUnknownKey = errors.New("unknown key")

var names = map[Code]string{
	A: "a", S: "s", D: "d", F: "f", H: "h", G: "g", Z: "z", X: "x", C: "c", V: "v",
	B: "b", Q: "q", W: "w", E: "e", R: "r", Y: "y", T: "t", O: "o", U: "u", I: "i",
	P: "p", L: "l", J: "j", K: "k", N: "n", M: "m",

	Digit1: "1", Digit2: "2", Digit3: "3", Digit4: "4", Digit5: "5",
	Digit6: "6", Digit7: "7", Digit8: "8", Digit9: "9", Digit0: "0",

	Equal: "equal", Minus: "minus", RightBracket: "rightbracket", LeftBracket: "leftbracket",
	Quote: "quote", Semicolon: "semicolon", Backslash: "backslash", Comma: "comma",
	Slash: "slash", Period: "period", Grave: "grave",

	Return: "return", Tab: "tab", Space: "space", Delete: "delete", Escape: "escape",

	JISYen: "yen", JISUnderscore: "underscore", JISEisu: "eisu", JISKana: "kana",

	F3: "f3", F5: "f5", F6: "f6", F7: "f7", F8: "f8", F9: "f9", F10: "f10",

	Left: "left", Right: "right", Down: "down", Up: "up",
}

var aliases = map[string]Code{
	"enter":     Return,
	"backspace": Delete,
	"esc":       Escape,
	"`":         Grave,
	",":         Comma,
	".":         Period,
	";":         Semicolon,
	"-":         Minus,
	"=":         Equal,
	"/":         Slash,
	"\\":        Backslash,
	"'":         Quote,
	"[":         LeftBracket,
	"]":         RightBracket,
	"_":         JISUnderscore,
	"lang1":     JISKana,
	"lang2":     JISEisu,
}

var byName map[string]Code

func init() {
	byName = make(map[string]Code, len(names)+len(aliases))
	for c, n := range names {
		byName[n] = c
	}
	for n, c := range aliases {
		byName[n] = c
	}
}

// String returns the key's short name, or its hex code if unnamed.
func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("0x%02x", uint16(c))
}

// Known reports whether c has a name in this package.
func (c Code) Known() bool {
	_, ok := names[c]
	return ok
}

// Parse resolves a key name ("a", "return", "yen") or a numeric code
// ("0x0e", "36") to a Code. Names are case-insensitive.
func Parse(s string) (Code, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return 0, fmt.Errorf("%w: empty name", ErrUnknownKey)
	}
	if c, ok := byName[key]; ok {
		return c, nil
	}
	if n, err := strconv.ParseUint(key, 0, 16); err == nil {
		return Code(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// Names returns every known key name in sorted order.
func Names() []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
