package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanakey/internal/deadkey"
	"kanakey/internal/diacritic"
	"kanakey/internal/fullwidth"
	"kanakey/internal/intent"
	"kanakey/internal/keycode"
	"kanakey/internal/keyevent"
	"kanakey/internal/settings"
)

const (
	shift = keyevent.ModShift
	ctrl  = keyevent.ModControl
	opt   = keyevent.ModOption
	cmd   = keyevent.ModCommand
	none  = keyevent.ModNone
)

func ev(code keycode.Code, mods keyevent.Modifiers, chars string) keyevent.Event {
	return keyevent.New(code, mods, chars)
}

func english(e keyevent.Event) keyevent.Event {
	return e.WithLocale(keyevent.English)
}

func TestTotality(t *testing.T) {
	samples := []string{"", "a", "A", "\x08", "!", "é", " ", "ab"}
	valid := map[intent.Kind]bool{}
	for _, k := range intent.Kinds() {
		valid[k] = true
	}

	for code := keycode.Code(0); code <= keycode.Max; code++ {
		for mods := keyevent.Modifiers(0); mods < 1<<5; mods++ {
			for _, locale := range []keyevent.Locale{keyevent.Japanese, keyevent.English} {
				for _, chars := range samples {
					e := ev(code, mods, chars).WithLocale(locale)
					c := New()
					got := c.Classify(e)
					if !valid[got.Kind] {
						t.Fatalf("Classify(%v) returned invalid kind %d", e, got.Kind)
					}
				}
			}
		}
	}
}

func TestRuleOrder(t *testing.T) {
	var names []string
	for _, r := range Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"option-diacritic", "control-chord",
		"return", "tab", "space", "delete", "escape", "yen", "comma-period",
		"function-row", "eisu", "kana", "arrow", "digit-row",
		"default",
	}, names)
}

func TestClassifyRules(t *testing.T) {
	tests := []struct {
		name string
		ev   keyevent.Event
		want intent.Intent
		rule string
	}{
		{"option+E arms acute", ev(keycode.E, opt, "´"), intent.NewBeginDeadKey(diacritic.Acute), "option-diacritic"},
		{"option+U arms umlaut", ev(keycode.U, opt, "¨"), intent.NewBeginDeadKey(diacritic.Umlaut), "option-diacritic"},
		{"option+JIS underscore arms grave", ev(keycode.JISUnderscore, opt, "`"), intent.NewBeginDeadKey(diacritic.Grave), "option-diacritic"},
		{"shift+option+E types mark", ev(keycode.E, opt|shift, "´"), intent.NewLiteral("´"), "option-diacritic"},
		{"option+I beats ctrl chord table", ev(keycode.I, opt, "ˆ"), intent.NewBeginDeadKey(diacritic.Circumflex), "option-diacritic"},
		{"ctrl+option+I is a chord", ev(keycode.I, opt|ctrl, "\t"), intent.NewShiftSegment(-1), "control-chord"},
		{"cmd+option+E skips diacritic", ev(keycode.E, opt|cmd, ""), intent.NewUnrecognized(), "default"},
		{"option+A is not a mark key", ev(keycode.A, opt, "å"), intent.NewLiteral("å"), "default"},

		{"ctrl+H", ev(keycode.H, ctrl, "\x08"), intent.NewBackspace(), "control-chord"},
		{"ctrl+P", ev(keycode.P, ctrl, "\x10"), intent.NewNavigate(intent.Up), "control-chord"},
		{"ctrl+M", ev(keycode.M, ctrl, "\r"), intent.NewCommit(), "control-chord"},
		{"ctrl+N", ev(keycode.N, ctrl, "\x0e"), intent.NewNavigate(intent.Down), "control-chord"},
		{"ctrl+F", ev(keycode.F, ctrl, "\x06"), intent.NewNavigate(intent.Right), "control-chord"},
		{"ctrl+O", ev(keycode.O, ctrl, "\x0f"), intent.NewShiftSegment(1), "control-chord"},
		{"ctrl+J", ev(keycode.J, ctrl, "\n"), intent.NewFunction(intent.F6), "control-chord"},
		{"ctrl+K", ev(keycode.K, ctrl, "\x0b"), intent.NewFunction(intent.F7), "control-chord"},
		{"ctrl+;", ev(keycode.Semicolon, ctrl, ";"), intent.NewFunction(intent.F8), "control-chord"},
		{"ctrl+S", ev(keycode.S, ctrl, "\x13"), intent.NewSuggest(), "control-chord"},
		{"H without ctrl", ev(keycode.H, none, "h"), intent.NewLiteral("h"), "default"},
		{"ctrl+A is not a chord", ev(keycode.A, ctrl, "\x01"), intent.NewUnrecognized(), "default"},
		{"; without ctrl remaps", ev(keycode.Semicolon, none, ";"), intent.NewLiteral("；"), "default"},

		{"return", ev(keycode.Return, none, "\r"), intent.NewCommit(), "return"},
		{"tab", ev(keycode.Tab, none, "\t"), intent.NewTab(), "tab"},
		{"delete", ev(keycode.Delete, none, "\x7f"), intent.NewBackspace(), "delete"},
		{"ctrl+delete", ev(keycode.Delete, ctrl, "\x7f"), intent.NewForget(), "delete"},
		{"escape", ev(keycode.Escape, none, "\x1b"), intent.NewCancel(), "escape"},
		{"F6", ev(keycode.F6, none, ""), intent.NewFunction(intent.F6), "function-row"},
		{"F7", ev(keycode.F7, none, ""), intent.NewFunction(intent.F7), "function-row"},
		{"F8", ev(keycode.F8, none, ""), intent.NewFunction(intent.F8), "function-row"},
		{"F5 is unrecognized", ev(keycode.F5, none, ""), intent.NewUnrecognized(), "default"},
		{"eisu", ev(keycode.JISEisu, none, ""), intent.NewToggleLatin(), "eisu"},
		{"kana", ev(keycode.JISKana, none, ""), intent.NewToggleKana(), "kana"},
		{"left", ev(keycode.Left, none, ""), intent.NewNavigate(intent.Left), "arrow"},
		{"right", ev(keycode.Right, shift, ""), intent.NewNavigate(intent.Right), "arrow"},
		{"down", ev(keycode.Down, none, ""), intent.NewNavigate(intent.Down), "arrow"},
		{"up", ev(keycode.Up, none, ""), intent.NewNavigate(intent.Up), "arrow"},

		{"letter", ev(keycode.A, none, "a"), intent.NewLiteral("a"), "default"},
		{"exclamation remaps", ev(keycode.Digit1, shift, "!"), intent.NewLiteral("！"), "default"},
		{"minus remaps", ev(keycode.Minus, none, "-"), intent.NewLiteral("ー"), "default"},
		{"empty characters", ev(keycode.Code(0x7f), none, ""), intent.NewUnrecognized(), "default"},
		{"control character", ev(keycode.A, none, "\x01"), intent.NewUnrecognized(), "default"},
		{"combining mark alone", ev(keycode.A, none, "\u0301"), intent.NewLiteral("\u0301"), "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := Evaluate(tt.ev)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rule, rule)
		})
	}
}

func TestSpaceXORLaw(t *testing.T) {
	for _, preferHalf := range []bool{false, true} {
		for _, withShift := range []bool{false, true} {
			mods := none
			if withShift {
				mods = shift
			}
			e := ev(keycode.Space, mods, " ").WithSettings(settings.Snapshot{HalfWidthSpace: preferHalf})
			got, _ := Evaluate(e)
			require.Equal(t, intent.WordDelimiter, got.Kind)
			assert.Equal(t, !(preferHalf != withShift), got.FullWidth,
				"preferHalf=%v shift=%v", preferHalf, withShift)
		}
	}
}

func TestYenTruthTable(t *testing.T) {
	tests := []struct {
		backslash bool
		mods      keyevent.Modifiers
		english   string
		japanese  string
	}{
		{false, none, "¥", "￥"},
		{false, opt, "\\", "＼"},
		{true, none, "\\", "＼"},
		{true, opt, "¥", "￥"},
		{false, shift, "|", "｜"},
		{false, shift | opt, "|", "｜"},
		{true, shift, "|", "｜"},
		{true, shift | opt, "|", "｜"},
	}
	for _, tt := range tests {
		s := settings.Snapshot{Backslash: tt.backslash}
		e := ev(keycode.JISYen, tt.mods, "x").WithSettings(s)

		got, _ := Evaluate(english(e))
		assert.Equal(t, intent.NewLiteral(tt.english), got, "english backslash=%v mods=%v", tt.backslash, tt.mods)

		got, _ = Evaluate(e)
		assert.Equal(t, intent.NewLiteral(tt.japanese), got, "japanese backslash=%v mods=%v", tt.backslash, tt.mods)
	}
}

func TestCommaPeriod(t *testing.T) {
	tests := []struct {
		name        string
		code        keycode.Code
		locale      keyevent.Locale
		commaPeriod bool
		want        string
	}{
		{"japanese comma", keycode.Comma, keyevent.Japanese, false, "、"},
		{"japanese period", keycode.Period, keyevent.Japanese, false, "。"},
		{"japanese comma setting", keycode.Comma, keyevent.Japanese, true, "，"},
		{"japanese period setting", keycode.Period, keyevent.Japanese, true, "．"},
		{"english comma", keycode.Comma, keyevent.English, true, ","},
		{"english period", keycode.Period, keyevent.English, false, "."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The host characters are ignored for unshifted comma/period.
			e := ev(tt.code, none, "?").WithLocale(tt.locale).
				WithSettings(settings.Snapshot{CommaPeriod: tt.commaPeriod})
			got, rule := Evaluate(e)
			assert.Equal(t, "comma-period", rule)
			assert.Equal(t, intent.NewLiteral(tt.want), got)
		})
	}
}

func TestCommaPeriodShiftBypass(t *testing.T) {
	for _, code := range []keycode.Code{keycode.Comma, keycode.Period} {
		host := "<"
		if code == keycode.Period {
			host = ">"
		}
		for _, locale := range []keyevent.Locale{keyevent.Japanese, keyevent.English} {
			for _, cp := range []bool{false, true} {
				e := ev(code, shift, host).WithLocale(locale).
					WithSettings(settings.Snapshot{CommaPeriod: cp})
				got, rule := Evaluate(e)
				assert.Equal(t, "default", rule)
				require.Equal(t, intent.LiteralInput, got.Kind)
				assert.NotContains(t, got.Text, "、")
				assert.NotContains(t, got.Text, "。")
				assert.NotContains(t, got.Text, "，")
				assert.NotContains(t, got.Text, "．")
				assert.Equal(t, fullwidth.Remap(host, locale, cp), got.Text)
			}
		}
	}

	got, _ := Evaluate(ev(keycode.Comma, shift, ""))
	assert.Equal(t, intent.Unrecognized, got.Kind, "shifted comma without characters")
}

func TestDigitRowExclusivity(t *testing.T) {
	row := []struct {
		code    keycode.Code
		digit   int
		shifted string
	}{
		{keycode.Digit1, 1, "!"},
		{keycode.Digit2, 2, "\""},
		{keycode.Digit3, 3, "#"},
		{keycode.Digit4, 4, "$"},
		{keycode.Digit5, 5, "%"},
		{keycode.Digit6, 6, "&"},
		{keycode.Digit7, 7, "'"},
		{keycode.Digit8, 8, "("},
		{keycode.Digit9, 9, ")"},
		{keycode.Digit0, 0, ""},
	}
	for _, k := range row {
		got, _ := Evaluate(ev(k.code, none, k.code.String()))
		assert.Equal(t, intent.NewDigit(k.digit), got)

		got, _ = Evaluate(ev(k.code, ctrl, ""))
		assert.Equal(t, intent.NewDigit(k.digit), got, "control does not suppress digits")

		got, _ = Evaluate(english(ev(k.code, shift, k.shifted)))
		if k.shifted == "" {
			assert.Equal(t, intent.NewUnrecognized(), got)
		} else {
			assert.Equal(t, intent.NewLiteral(k.shifted), got, "shift+%d", k.digit)
		}

		got, _ = Evaluate(english(ev(k.code, opt, "¡")))
		assert.Equal(t, intent.NewLiteral("¡"), got, "option+%d", k.digit)
	}
}

func TestEnglishModeIsIdentity(t *testing.T) {
	for from := range fullwidth.Table() {
		s := string(from)
		got, _ := Evaluate(english(ev(keycode.Backslash, none, s)))
		assert.Equal(t, intent.NewLiteral(s), got)

		got, _ = Evaluate(english(ev(keycode.Backslash, none, s)).
			WithSettings(settings.Snapshot{CommaPeriod: true}))
		assert.Equal(t, intent.NewLiteral(s), got)
	}
}

func TestDeadKeyRoundTrip(t *testing.T) {
	c := New()

	got := c.Classify(ev(keycode.E, opt, "´"))
	assert.Equal(t, intent.NewBeginDeadKey(diacritic.Acute), got)
	m, ok := c.Pending()
	require.True(t, ok)
	assert.Equal(t, diacritic.Acute, m)

	d := c.Decide(ev(keycode.E, none, "e"))
	assert.Equal(t, intent.NewLiteral("é"), d.Intent)
	assert.Equal(t, "dead-key", d.Rule)
	assert.Equal(t, deadkey.Composed, d.DeadKey)

	c.Classify(ev(keycode.E, opt, "´"))
	assert.Equal(t, intent.NewLiteral("É"), c.Classify(ev(keycode.E, shift, "E")))

	_, ok = c.Pending()
	assert.False(t, ok)
}

func TestDeadKeyComposedTextIsNotRemapped(t *testing.T) {
	c := New()
	c.Classify(ev(keycode.N, opt, "˜"))
	assert.Equal(t, intent.NewLiteral("ñ"), c.Classify(ev(keycode.N, none, "n")))
}

func TestDeadKeyMiss(t *testing.T) {
	c := New()
	c.Classify(ev(keycode.Grave, opt, "`"))

	d := c.Decide(ev(keycode.Y, none, "y"))
	assert.Equal(t, intent.NewLiteral("`y"), d.Intent)
	assert.Equal(t, deadkey.Missed, d.DeadKey)
	assert.Equal(t, "default", d.Rule)

	_, ok := c.Pending()
	assert.False(t, ok)
}

func TestDeadKeyMissMarkIsNotRemapped(t *testing.T) {
	c := New()
	c.Classify(ev(keycode.Grave, opt, "`"))
	// The key itself still remaps; the mark does not.
	assert.Equal(t, intent.NewLiteral("`！"), c.Classify(ev(keycode.Digit1, shift, "!")))
}

func TestDeadKeyMissOnNonLiteral(t *testing.T) {
	tests := []struct {
		name string
		ev   keyevent.Event
		kind intent.Kind
	}{
		{"return", ev(keycode.Return, none, "\r"), intent.Commit},
		{"digit", ev(keycode.Digit3, none, "3"), intent.Digit},
		{"backspace", ev(keycode.Delete, none, ""), intent.Backspace},
		{"unrecognized", ev(keycode.F5, none, ""), intent.Unrecognized},
		{"control character", ev(keycode.A, ctrl, "\x01"), intent.Unrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Classify(ev(keycode.U, opt, "¨"))
			got := c.Classify(tt.ev)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, "¨", got.Prefix)
		})
	}
}

func TestDeadKeyChained(t *testing.T) {
	c := New()
	c.Classify(ev(keycode.E, opt, "´"))

	got := c.Classify(ev(keycode.U, opt, "¨"))
	assert.Equal(t, intent.BeginDeadKey, got.Kind)
	assert.Equal(t, diacritic.Umlaut, got.Mark)
	assert.Equal(t, "´", got.Prefix, "the first mark is delivered, not dropped")

	assert.Equal(t, intent.NewLiteral("ü"), c.Classify(ev(keycode.U, none, "u")))
}

func TestShiftOptionMarkDoesNotArm(t *testing.T) {
	c := New()
	assert.Equal(t, intent.NewLiteral("ˆ"), c.Classify(ev(keycode.I, opt|shift, "ˆ")))
	_, ok := c.Pending()
	assert.False(t, ok)
}

func TestFlush(t *testing.T) {
	c := New()
	_, ok := c.Flush()
	assert.False(t, ok)

	c.Classify(ev(keycode.N, opt, "˜"))
	got, ok := c.Flush()
	require.True(t, ok)
	assert.Equal(t, intent.NewLiteral("˜"), got)

	assert.Equal(t, intent.NewLiteral("n"), c.Classify(english(ev(keycode.N, none, "n"))))
}

func TestReset(t *testing.T) {
	c := New()
	c.Classify(ev(keycode.N, opt, "˜"))
	c.Reset()
	assert.Equal(t, intent.NewLiteral("n"), c.Classify(ev(keycode.N, none, "n")))
}

// Option is pressed, the acute mark key is pressed and released, option is
// released, then A is typed. Modifier-only transitions never reach the
// classifier, so the host delivers two key-down events.
func TestEndToEndAcute(t *testing.T) {
	for _, tt := range []struct {
		mods keyevent.Modifiers
		char string
		want string
	}{
		{none, "a", "á"},
		{shift, "A", "Á"},
	} {
		c := New()
		var out []intent.Intent
		for _, e := range []keyevent.Event{
			ev(keycode.E, opt, "´"),
			ev(keycode.A, tt.mods, tt.char),
		} {
			in := c.Classify(e)
			if in.Kind == intent.BeginDeadKey {
				continue
			}
			out = append(out, in)
		}
		require.Len(t, out, 1)
		assert.Equal(t, intent.NewLiteral(tt.want), out[0])
	}
}

func TestPrintable(t *testing.T) {
	assert.True(t, printable("abc"))
	assert.True(t, printable("！"))
	assert.True(t, printable("¥"))
	assert.True(t, printable("あ"))
	assert.False(t, printable(""))
	assert.False(t, printable(" "))
	assert.False(t, printable("a b"))
	assert.False(t, printable(strings.Repeat("\x7f", 2)))
}
