package diacritic

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		mark  Mark
		base  string
		shift bool
		want  string
		ok    bool
	}{
		{Acute, "e", false, "é", true},
		{Acute, "e", true, "É", true},
		{Acute, "E", false, "é", true},
		{Umlaut, "y", true, "Ÿ", true},
		{Tilde, "n", false, "ñ", true},
		{Circumflex, "o", false, "ô", true},
		{Grave, "y", false, "", false},
		{Tilde, "e", false, "", false},
		{Acute, "", false, "", false},
		{Acute, "ee", false, "", false},
		{Acute, "1", false, "", false},
		{Mark('x'), "a", false, "", false},
	}
	for _, tt := range tests {
		got, ok := Resolve(tt.mark, tt.base, tt.shift)
		assert.Equal(t, tt.ok, ok, "Resolve(%s, %q, %v)", tt.mark.Name(), tt.base, tt.shift)
		assert.Equal(t, tt.want, got, "Resolve(%s, %q, %v)", tt.mark.Name(), tt.base, tt.shift)
	}
}

func TestTableShape(t *testing.T) {
	counts := map[Mark]int{}
	for _, c := range Combinations() {
		counts[c.Mark]++
	}
	assert.Equal(t, map[Mark]int{
		Umlaut:     6,
		Acute:      6,
		Grave:      5,
		Circumflex: 5,
		Tilde:      3,
	}, counts)
}

func TestCombinationsMatchNFC(t *testing.T) {
	for _, c := range Combinations() {
		require.True(t, c.Mark.Valid())

		lower := norm.NFC.String(string(c.Base) + string(c.Mark.Combining()))
		upper := norm.NFC.String(string(unicode.ToUpper(c.Base)) + string(c.Mark.Combining()))

		assert.Equal(t, lower, string(c.Lower), "%s + %c", c.Mark.Name(), c.Base)
		assert.Equal(t, upper, string(c.Upper), "%s + %c", c.Mark.Name(), unicode.ToUpper(c.Base))
	}
}

func TestOnlyVowelsYAndN(t *testing.T) {
	allowed := "aeiouyn"
	for r := rune(0x20); r < 0x250; r++ {
		for _, m := range Marks() {
			if _, ok := Lookup(m, r); ok {
				assert.Contains(t, allowed, string(unicode.ToLower(r)))
			}
		}
	}
}

func TestMarkNames(t *testing.T) {
	assert.Equal(t, "acute", Acute.Name())
	assert.Equal(t, "´", Acute.String())
	assert.False(t, Mark('^').Valid(), "ASCII caret is not the circumflex mark")
	assert.Contains(t, Mark('^').Name(), "U+005E")
}
