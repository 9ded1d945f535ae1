// Package diacritic maps a spacing diacritic mark and a Latin base letter
// to the precomposed character.
package diacritic

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Mark is a spacing diacritic as typed by a dead key.
type Mark rune

const (
	Umlaut     Mark = '¨' // U+00A8
	Acute      Mark = '´' // U+00B4
	Grave      Mark = '`' // U+0060
	Circumflex Mark = 'ˆ' // U+02C6
	Tilde      Mark = '˜' // U+02DC
)

// Marks returns the supported marks.
func Marks() []Mark {
	return []Mark{Umlaut, Acute, Grave, Circumflex, Tilde}
}

// Valid reports whether m is one of the supported marks.
func (m Mark) Valid() bool {
	_, ok := combining[m]
	return ok
}

// Combining returns the combining form of m (U+0300 block).
func (m Mark) Combining() rune {
	return combining[m]
}

func (m Mark) String() string {
	return string(rune(m))
}

// Name returns a lowercase English name for m.
func (m Mark) Name() string {
	switch m {
	case Umlaut:
		return "umlaut"
	case Acute:
		return "acute"
	case Grave:
		return "grave"
	case Circumflex:
		return "circumflex"
	case Tilde:
		return "tilde"
	}
	return fmt.Sprintf("mark(%U)", rune(m))
}

var combining = map[Mark]rune{
	Grave:      '\u0300',
	Acute:      '\u0301',
	Circumflex: '\u0302',
	Tilde:      '\u0303',
	Umlaut:     '\u0308',
}

// Combination is one entry of the table.
type Combination struct {
	Mark  Mark
	Base  rune // lowercase
	Lower rune
	Upper rune
}

var combinations = []Combination{
	{Umlaut, 'a', 'ä', 'Ä'},
	{Umlaut, 'e', 'ë', 'Ë'},
	{Umlaut, 'i', 'ï', 'Ï'},
	{Umlaut, 'o', 'ö', 'Ö'},
	{Umlaut, 'u', 'ü', 'Ü'},
	{Umlaut, 'y', 'ÿ', 'Ÿ'},

	{Acute, 'a', 'á', 'Á'},
	{Acute, 'e', 'é', 'É'},
	{Acute, 'i', 'í', 'Í'},
	{Acute, 'o', 'ó', 'Ó'},
	{Acute, 'u', 'ú', 'Ú'},
	{Acute, 'y', 'ý', 'Ý'},

	{Grave, 'a', 'à', 'À'},
	{Grave, 'e', 'è', 'È'},
	{Grave, 'i', 'ì', 'Ì'},
	{Grave, 'o', 'ò', 'Ò'},
	{Grave, 'u', 'ù', 'Ù'},

	{Circumflex, 'a', 'â', 'Â'},
	{Circumflex, 'e', 'ê', 'Ê'},
	{Circumflex, 'i', 'î', 'Î'},
	{Circumflex, 'o', 'ô', 'Ô'},
	{Circumflex, 'u', 'û', 'Û'},

	{Tilde, 'a', 'ã', 'Ã'},
	{Tilde, 'n', 'ñ', 'Ñ'},
	{Tilde, 'o', 'õ', 'Õ'},
}

type lookupKey struct {
	mark Mark
	base rune
}

var index = func() map[lookupKey]Combination {
	m := make(map[lookupKey]Combination, len(combinations))
	for _, c := range combinations {
		m[lookupKey{c.Mark, c.Base}] = c
	}
	return m
}()

// Combinations returns a copy of the table.
func Combinations() []Combination {
	out := make([]Combination, len(combinations))
	copy(out, combinations)
	return out
}

// Lookup returns the combination for mark and base. base is compared
// case-insensitively.
func Lookup(mark Mark, base rune) (Combination, bool) {
	c, ok := index[lookupKey{mark, unicode.ToLower(base)}]
	return c, ok
}

// Resolve composes mark with base, which must be exactly one character.
// The case of the result follows shift, not the case of base.
func Resolve(mark Mark, base string, shift bool) (string, bool) {
	r, size := utf8.DecodeRuneInString(base)
	if r == utf8.RuneError || size != len(base) {
		return "", false
	}
	c, ok := Lookup(mark, r)
	if !ok {
		return "", false
	}
	if shift {
		return string(c.Upper), true
	}
	return string(c.Lower), true
}
