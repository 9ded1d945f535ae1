// Package keyevent defines the raw key event delivered by a host.
package keyevent

import (
	"fmt"
	"strings"

	"kanakey/internal/keycode"
	"kanakey/internal/settings"
)

// Modifiers represents modifier key state.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModOption // Alt on non-Apple keyboards
	ModCommand
	ModCapsLock
)

// ModNone indicates no modifiers.
const ModNone Modifiers = 0

// Has reports whether every modifier in mod is set.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod == mod
}

// Any reports whether at least one modifier in mod is set.
func (m Modifiers) Any(mod Modifiers) bool {
	return m&mod != 0
}

// Shift reports whether Shift is held.
func (m Modifiers) Shift() bool { return m.Has(ModShift) }

// Control reports whether Control is held.
func (m Modifiers) Control() bool { return m.Has(ModControl) }

// Option reports whether Option/Alt is held.
func (m Modifiers) Option() bool { return m.Has(ModOption) }

// Command reports whether Command/Super is held.
func (m Modifiers) Command() bool { return m.Has(ModCommand) }

// String returns a representation like "Ctrl+Opt+Shift".
func (m Modifiers) String() string {
	if m == ModNone {
		return ""
	}
	var parts []string
	if m.Control() {
		parts = append(parts, "Ctrl")
	}
	if m.Option() {
		parts = append(parts, "Opt")
	}
	if m.Shift() {
		parts = append(parts, "Shift")
	}
	if m.Command() {
		parts = append(parts, "Cmd")
	}
	if m.Has(ModCapsLock) {
		parts = append(parts, "Caps")
	}
	return strings.Join(parts, "+")
}

var modifierNames = map[string]Modifiers{
	"shift":    ModShift,
	"s":        ModShift,
	"ctrl":     ModControl,
	"control":  ModControl,
	"c":        ModControl,
	"opt":      ModOption,
	"option":   ModOption,
	"alt":      ModOption,
	"a":        ModOption,
	"cmd":      ModCommand,
	"command":  ModCommand,
	"super":    ModCommand,
	"meta":     ModCommand,
	"caps":     ModCapsLock,
	"capslock": ModCapsLock,
}

// ParseModifiers parses names such as ["ctrl", "shift"] into a set.
func ParseModifiers(names []string) (Modifiers, error) {
	var m Modifiers
	for _, n := range names {
		mod, ok := modifierNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return ModNone, fmt.Errorf("unknown modifier %q", n)
		}
		m |= mod
	}
	return m, nil
}

// Locale is the active input locale.
type Locale uint8

const (
	// Japanese remaps ASCII punctuation to full-width forms.
	Japanese Locale = iota
	// English passes characters through unchanged.
	English
)

func (l Locale) String() string {
	switch l {
	case Japanese:
		return "japanese"
	case English:
		return "english"
	default:
		return fmt.Sprintf("locale(%d)", uint8(l))
	}
}

// ParseLocale parses "japanese"/"ja" or "english"/"en".
func ParseLocale(s string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "japanese", "ja", "jp", "kana":
		return Japanese, nil
	case "english", "en", "latin", "eisu":
		return English, nil
	}
	return Japanese, fmt.Errorf("unknown locale %q", s)
}

// Event is one key-down event as delivered by the host.
type Event struct {
	// Code is the physical key code.
	Code keycode.Code

	// Modifiers held while the key was pressed.
	Modifiers Modifiers

	// Characters is the host-decoded text for the key, if any. It may be
	// empty for non-character keys, and contains control characters when
	// Control is held, as the host decodes them.
	Characters string

	// Locale is the active input locale.
	Locale Locale

	// Settings is the preference snapshot for this event.
	Settings settings.Snapshot
}

// New creates an event for code with the given modifiers and characters
// in the Japanese locale with default settings.
func New(code keycode.Code, mods Modifiers, chars string) Event {
	return Event{
		Code:       code,
		Modifiers:  mods,
		Characters: chars,
		Locale:     Japanese,
		Settings:   settings.Defaults(),
	}
}

// WithLocale returns a copy of e in locale l.
func (e Event) WithLocale(l Locale) Event {
	e.Locale = l
	return e
}

// WithSettings returns a copy of e carrying s.
func (e Event) WithSettings(s settings.Snapshot) Event {
	e.Settings = s
	return e
}

func (e Event) String() string {
	var b strings.Builder
	if m := e.Modifiers.String(); m != "" {
		b.WriteString(m)
		b.WriteByte('+')
	}
	b.WriteString(e.Code.String())
	if e.Characters != "" {
		fmt.Fprintf(&b, " %q", e.Characters)
	}
	return b.String()
}
