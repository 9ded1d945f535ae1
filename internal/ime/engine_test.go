package ime

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanakey/internal/action"
	"kanakey/internal/journal"
	"kanakey/internal/keycode"
	"kanakey/internal/keyevent"
	"kanakey/internal/logging"
	"kanakey/internal/memhost"
	"kanakey/internal/settings"
)

type recorder struct {
	entries []*journal.Entry
	err     error
}

func (r *recorder) Record(e *journal.Entry) error {
	r.entries = append(r.entries, e)
	return r.err
}

type panicHost struct{}

func (panicHost) Apply(action.Action) error { panic("host bug") }
func (panicHost) CompositionEmpty() bool    { return true }

type key struct {
	code  keycode.Code
	mods  keyevent.Modifiers
	chars string
}

func typeKeys(t *testing.T, e *Engine, f *memhost.Field, keys ...key) []Result {
	t.Helper()
	var out []Result
	for _, k := range keys {
		res, err := e.ProcessKey(k.code, k.mods, k.chars, f)
		require.NoError(t, err, "key %s", k.code)
		out = append(out, res)
	}
	return out
}

func TestComposeAndCommit(t *testing.T) {
	e := NewEngine(Options{})
	f := memhost.New()

	results := typeKeys(t, e, f,
		key{keycode.K, 0, "k"},
		key{keycode.A, 0, "a"},
	)
	for _, r := range results {
		assert.True(t, r.Consumed)
	}
	assert.Equal(t, "ka", f.Marked())
	assert.Equal(t, action.Composing, e.State())

	typeKeys(t, e, f, key{keycode.Return, 0, "\r"})
	assert.Equal(t, "ka", f.Committed())
	assert.Equal(t, action.None, e.State())

	stats := e.Stats()
	assert.Equal(t, uint64(3), stats.Keys)
	assert.Equal(t, uint64(3), stats.Consumed)
	assert.Zero(t, stats.PassedThrough)
}

func TestIdleKeysPassThrough(t *testing.T) {
	e := NewEngine(Options{})
	f := memhost.New()

	results := typeKeys(t, e, f,
		key{keycode.Return, 0, "\r"},
		key{keycode.Delete, 0, "\x7f"},
	)
	for _, r := range results {
		assert.False(t, r.Consumed)
		require.Len(t, r.Steps, 1)
		assert.Equal(t, action.PassThrough, r.Steps[0].Action.Kind)
	}
	assert.Equal(t, uint64(2), e.Stats().PassedThrough)
}

func TestDeadKeyComposes(t *testing.T) {
	e := NewEngine(Options{})
	f := memhost.New()

	res := typeKeys(t, e, f, key{keycode.E, keyevent.ModOption, "´"})
	assert.True(t, res[0].Consumed)
	assert.Equal(t, "´", f.Preedit())

	res = typeKeys(t, e, f, key{keycode.E, 0, "e"})
	assert.Equal(t, "dead-key", res[0].Decision.Rule)
	assert.Equal(t, "é", f.Marked())
	assert.Equal(t, "é", f.Preedit())
}

func TestDeadKeyMissBeforeCommit(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(Options{Journal: rec})
	f := memhost.New()

	typeKeys(t, e, f, key{keycode.U, keyevent.ModOption, "¨"})
	res := typeKeys(t, e, f, key{keycode.Return, 0, "\r"})

	require.Len(t, res[0].Steps, 2, "the mark is inserted, then the composition commits")
	assert.Equal(t, "¨", f.Committed())
	assert.Equal(t, action.None, e.State())

	require.Len(t, rec.entries, 2)
	last := rec.entries[1]
	assert.Equal(t, action.None.String(), last.From)
	assert.Equal(t, action.None.String(), last.To)
	assert.Equal(t, 2, len(strings.Split(last.Action, ", ")))
}

func TestDeadKeyMissBeforePassThrough(t *testing.T) {
	e := NewEngine(Options{Locale: keyevent.English})
	f := memhost.New()

	typeKeys(t, e, f, key{keycode.E, keyevent.ModOption, "´"})
	res := typeKeys(t, e, f, key{keycode.A, keyevent.ModControl, "\x01"})

	require.Len(t, res[0].Steps, 2)
	assert.Equal(t, action.InsertDirect, res[0].Steps[0].Action.Kind)
	assert.Equal(t, action.PassThrough, res[0].Steps[1].Action.Kind)
	assert.False(t, res[0].Consumed, "control+A still reaches the application")
	assert.Equal(t, "´", f.Committed(), "the mark is delivered first")
	assert.Equal(t, uint64(1), e.Stats().PassedThrough)
}

func TestFlush(t *testing.T) {
	e := NewEngine(Options{})
	f := memhost.New()

	_, ok, err := e.Flush(f)
	require.NoError(t, err)
	assert.False(t, ok)

	typeKeys(t, e, f, key{keycode.N, keyevent.ModOption, "˜"})
	res, ok, err := e.Flush(f)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "flush", res.Decision.Rule)
	assert.Equal(t, "˜", f.Marked())

	_, ok, err = e.Flush(f)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJournalEntry(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(Options{Journal: rec})
	f := memhost.New()

	typeKeys(t, e, f, key{keycode.K, 0, "k"})
	require.Len(t, rec.entries, 1)

	got := rec.entries[0]
	assert.Equal(t, keycode.K, got.Code)
	assert.Equal(t, keyevent.Japanese, got.Locale)
	assert.Equal(t, "k", got.Chars)
	assert.Equal(t, "default", got.Rule)
	assert.Equal(t, action.None.String(), got.From)
	assert.Equal(t, action.Composing.String(), got.To)
	assert.NotEmpty(t, got.Intent)
	assert.NotEmpty(t, got.Action)
}

func TestRedactedTrace(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(&logging.Config{Level: logging.LevelDebug, Writer: &buf, RedactInput: true})
	require.NoError(t, err)

	rec := &recorder{}
	e := NewEngine(Options{Locale: keyevent.English, Logger: logger, Journal: rec})
	f := memhost.New()

	typeKeys(t, e, f, key{keycode.Q, 0, "q"})
	assert.Equal(t, "q", f.Committed())

	out := buf.String()
	assert.Contains(t, out, "intent=literal-input")
	assert.Contains(t, out, "action=insert-direct")
	assert.NotContains(t, out, `\"q\"`)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "literal-input", rec.entries[0].IntentRedacted)
	assert.Equal(t, "insert-direct", rec.entries[0].ActionRedacted)
	assert.Equal(t, `literal-input("q")`, rec.entries[0].Intent, "the journal decides what to store")
}

func TestJournalFailureDoesNotFailKey(t *testing.T) {
	rec := &recorder{err: errors.New("disk full")}
	e := NewEngine(Options{Journal: rec})
	f := memhost.New()

	typeKeys(t, e, f, key{keycode.K, 0, "k"})
	assert.Equal(t, "k", f.Marked())
	assert.Zero(t, e.Stats().Errors)
}

func TestHostPanicIsRecovered(t *testing.T) {
	e := NewEngine(Options{})

	_, err := e.ProcessKey(keycode.K, 0, "k", panicHost{})
	require.Error(t, err)

	var pe *logging.PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "process-key", pe.Op)
	assert.Equal(t, uint64(1), e.Stats().Errors)
	assert.Equal(t, action.None, e.State())

	f := memhost.New()
	typeKeys(t, e, f, key{keycode.K, 0, "k"})
	assert.Equal(t, "k", f.Marked(), "the engine keeps working")
}

func TestLocaleToggle(t *testing.T) {
	e := NewEngine(Options{})
	f := memhost.New()

	typeKeys(t, e, f, key{keycode.JISEisu, 0, ""})
	assert.Equal(t, keyevent.English, e.Locale())

	typeKeys(t, e, f, key{keycode.K, 0, "k"})
	assert.Equal(t, "k", f.Committed(), "english input bypasses the composition")

	e.SetLocale(keyevent.Japanese)
	typeKeys(t, e, f, key{keycode.K, 0, "k"})
	assert.Equal(t, "k", f.Marked())
}

func TestSettingsAreReadPerKey(t *testing.T) {
	prefs := settings.NewAtomic(settings.Defaults())
	e := NewEngine(Options{Settings: prefs})
	f := memhost.New()

	res := typeKeys(t, e, f, key{keycode.Space, 0, " "})
	assert.True(t, res[0].Consumed, "half-width preference is off, a full-width space is typed")
	assert.Equal(t, "　", f.Committed())

	prefs.Store(settings.Defaults().With(settings.KeyHalfWidthSpace, true))
	res = typeKeys(t, e, f, key{keycode.Space, 0, " "})
	assert.False(t, res[0].Consumed)
	assert.Equal(t, "　", f.Committed(), "half-width spaces are left to the application")
}

func TestReset(t *testing.T) {
	e := NewEngine(Options{})
	f := memhost.New()

	typeKeys(t, e, f, key{keycode.E, keyevent.ModOption, "´"}, key{keycode.K, 0, "k"})
	typeKeys(t, e, f, key{keycode.E, keyevent.ModOption, "´"})
	e.Reset()
	assert.Equal(t, action.None, e.State())

	_, ok, err := e.Flush(f)
	require.NoError(t, err)
	assert.False(t, ok, "reset drops the pending mark")
}
