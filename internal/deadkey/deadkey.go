// Package deadkey implements the two-state dead-key composer.
//
// A mark-start key arms the composer with a pending mark. The next key
// event always disarms it: either the mark combines with the key's
// character, or the composer reports a miss and hands the mark back so the
// caller can emit it literally.
//
//	idle ──(mark key, no shift)──▶ awaiting(mark)
//	awaiting(mark) ──(any key)──▶ idle   (Composed | Missed)
package deadkey

import (
	"kanakey/internal/diacritic"
	"kanakey/internal/keycode"
	"kanakey/internal/keyevent"
)

var markKeys = map[keycode.Code]diacritic.Mark{
	keycode.U:             diacritic.Umlaut,
	keycode.E:             diacritic.Acute,
	keycode.Grave:         diacritic.Grave, // US layout
	keycode.JISUnderscore: diacritic.Grave, // JIS layout
	keycode.I:             diacritic.Circumflex,
	keycode.N:             diacritic.Tilde,
}

// MarkForKey returns the mark bound to a mark-start key.
func MarkForKey(code keycode.Code) (diacritic.Mark, bool) {
	m, ok := markKeys[code]
	return m, ok
}

// MarkKeys returns the mark-start key table.
func MarkKeys() map[keycode.Code]diacritic.Mark {
	out := make(map[keycode.Code]diacritic.Mark, len(markKeys))
	for k, v := range markKeys {
		out[k] = v
	}
	return out
}

// Outcome describes what feeding a key to the composer did.
type Outcome uint8

const (
	// Idle means no mark was pending; the key is not affected.
	Idle Outcome = iota
	// Composed means the pending mark combined with the key.
	Composed
	// Missed means the pending mark did not combine. The mark is returned
	// and the key must be classified normally.
	Missed
)

func (o Outcome) String() string {
	switch o {
	case Idle:
		return "idle"
	case Composed:
		return "composed"
	case Missed:
		return "missed"
	}
	return "unknown"
}

// Result is returned by Feed.
type Result struct {
	Outcome Outcome
	Text    string         // composed character when Outcome is Composed
	Mark    diacritic.Mark // the mark that was pending, if any
}

// Composer holds at most one pending mark. The zero value is idle.
// A Composer is not safe for concurrent use.
type Composer struct {
	pending diacritic.Mark
	armed   bool
}

// Begin arms the composer with m, replacing any pending mark.
func (c *Composer) Begin(m diacritic.Mark) {
	c.pending = m
	c.armed = true
}

// Pending returns the pending mark.
func (c *Composer) Pending() (diacritic.Mark, bool) {
	return c.pending, c.armed
}

// Feed disarms the composer and tries to combine the pending mark with the
// key's characters. Combination is only attempted when neither control nor
// command is held.
func (c *Composer) Feed(chars string, mods keyevent.Modifiers) Result {
	if !c.armed {
		return Result{Outcome: Idle}
	}
	mark := c.pending
	c.Reset()

	if !mods.Any(keyevent.ModControl | keyevent.ModCommand) {
		if text, ok := diacritic.Resolve(mark, chars, mods.Shift()); ok {
			return Result{Outcome: Composed, Text: text, Mark: mark}
		}
	}
	return Result{Outcome: Missed, Mark: mark}
}

// Flush disarms the composer and returns the mark that was pending, so the
// caller can deliver it when input is interrupted.
func (c *Composer) Flush() (diacritic.Mark, bool) {
	m, ok := c.pending, c.armed
	c.Reset()
	return m, ok
}

// Reset discards any pending mark.
func (c *Composer) Reset() {
	c.pending = 0
	c.armed = false
}
