// Package fullwidth remaps ASCII punctuation typed in Japanese mode to its
// full-width Japanese form.
package fullwidth

import (
	"strings"

	"kanakey/internal/keyevent"
)

var table = map[rune]rune{
	'!':  '！',
	'"':  '”',
	'#':  '＃',
	'$':  '＄',
	'%':  '％',
	'&':  '＆',
	'\'': '’',
	'(':  '（',
	')':  '）',
	'=':  '＝',
	'~':  '〜',
	'|':  '｜',
	'`':  '｀',
	'{':  '『',
	'+':  '＋',
	'*':  '＊',
	'}':  '』',
	'<':  '＜',
	'>':  '＞',
	'?':  '？',
	'_':  '＿',
	'-':  'ー',
	'^':  '＾',
	'\\': '＼',
	'¥':  '￥',
	'@':  '＠',
	'[':  '「',
	';':  '；',
	':':  '：',
	']':  '」',
	',':  '、',
	'.':  '。',
	'/':  '・',
}

// Ideographic comma/period and their full-width Latin replacements used
// when the comma/period preference is on.
const (
	IdeographicComma  = '、'
	IdeographicPeriod = '。'
	FullWidthComma    = '，'
	FullWidthPeriod   = '．'
)

// Table returns a copy of the remap table.
func Table() map[rune]rune {
	out := make(map[rune]rune, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

// Lookup returns the full-width form of r.
func Lookup(r rune) (rune, bool) {
	w, ok := table[r]
	return w, ok
}

// Remap applies the table to every rune of text in Japanese mode. If
// commaPeriod is set, 、 and 。 are then rewritten to ， and ．. English mode
// returns text unchanged.
func Remap(text string, locale keyevent.Locale, commaPeriod bool) string {
	if locale != keyevent.Japanese || text == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) * 3)
	for _, r := range text {
		if w, ok := table[r]; ok {
			r = w
		}
		if commaPeriod {
			switch r {
			case IdeographicComma:
				r = FullWidthComma
			case IdeographicPeriod:
				r = FullWidthPeriod
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
