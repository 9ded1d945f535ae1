package composition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanakey/internal/action"
	"kanakey/internal/diacritic"
	"kanakey/internal/intent"
	"kanakey/internal/keyevent"
	"kanakey/internal/memhost"
	"kanakey/internal/settings"
)

// samples returns at least one intent of every kind, covering every
// navigation direction, function slot and digit.
func samples() []intent.Intent {
	out := []intent.Intent{
		intent.NewUnrecognized(),
		intent.NewLiteral("a"),
		intent.NewBackspace(),
		intent.NewCommit(),
		intent.NewWordDelimiter(true),
		intent.NewWordDelimiter(false),
		intent.NewCancel(),
		intent.NewTab(),
		intent.NewToggleLatin(),
		intent.NewToggleKana(),
		intent.NewShiftSegment(-1),
		intent.NewShiftSegment(1),
		intent.NewSuggest(),
		intent.NewBeginDeadKey(diacritic.Acute),
		intent.NewForget(),
	}
	for _, d := range []intent.Direction{intent.Up, intent.Down, intent.Left, intent.Right} {
		out = append(out, intent.NewNavigate(d))
	}
	for _, s := range []intent.Slot{intent.F6, intent.F7, intent.F8} {
		out = append(out, intent.NewFunction(s))
	}
	for n := 0; n <= 9; n++ {
		out = append(out, intent.NewDigit(n))
	}
	return out
}

func TestTransitionIsTotal(t *testing.T) {
	covered := map[intent.Kind]bool{}
	for _, in := range samples() {
		covered[in.Kind] = true
	}
	for _, k := range intent.Kinds() {
		require.True(t, covered[k], "samples miss kind %s", k)
	}

	for _, s := range action.States() {
		for _, in := range samples() {
			for _, locale := range []keyevent.Locale{keyevent.Japanese, keyevent.English} {
				for _, suggest := range []bool{false, true} {
					a, _ := Transition(s, in, Env{Locale: locale, Suggestion: suggest})
					assert.True(t, a.Valid(), "state=%s intent=%s locale=%s suggest=%v", s, in, locale, suggest)
				}
			}
		}
	}
}

func TestTransitionTable(t *testing.T) {
	ja := Env{Locale: keyevent.Japanese}
	en := Env{Locale: keyevent.English}
	suggest := Env{Locale: keyevent.Japanese, Suggestion: true}

	tests := []struct {
		name  string
		state action.State
		in    intent.Intent
		env   Env
		want  action.Action
		cb    action.Callback
	}{
		{"none literal ja", action.None, intent.NewLiteral("k"), ja, action.Insert("k"), action.Transition(action.Composing)},
		{"none literal en", action.None, intent.NewLiteral("k"), en, action.Direct("k"), action.StayCallback()},
		{"none digit ja", action.None, intent.NewDigit(1), ja, action.InsertPiece(action.Piece{Input: "1", Intention: "１"}), action.Transition(action.Composing)},
		{"none digit en", action.None, intent.NewDigit(1), en, action.Direct("1"), action.StayCallback()},
		{"none full space ja", action.None, intent.NewWordDelimiter(true), ja, action.Direct("　"), action.StayCallback()},
		{"none half space ja", action.None, intent.NewWordDelimiter(false), ja, action.New(action.PassThrough), action.StayCallback()},
		{"none full space en", action.None, intent.NewWordDelimiter(true), en, action.New(action.PassThrough), action.StayCallback()},
		{"none eisu", action.None, intent.NewToggleLatin(), ja, action.Locale(keyevent.English), action.StayCallback()},
		{"none kana", action.None, intent.NewToggleKana(), en, action.Locale(keyevent.Japanese), action.StayCallback()},
		{"none suggest off", action.None, intent.NewSuggest(), ja, action.New(action.PassThrough), action.StayCallback()},
		{"none suggest on", action.None, intent.NewSuggest(), suggest, action.New(action.RequestPredictiveSuggestion), action.StayCallback()},
		{"none backspace", action.None, intent.NewBackspace(), ja, action.New(action.PassThrough), action.StayCallback()},
		{"none dead key", action.None, intent.NewBeginDeadKey(diacritic.Tilde), ja, action.Diacritic(diacritic.Tilde), action.StayCallback()},

		{"composing literal", action.Composing, intent.NewLiteral("a"), ja, action.Insert("a"), action.StayCallback()},
		{"composing backspace", action.Composing, intent.NewBackspace(), ja, action.New(action.RemoveLastCompositionUnit), action.BasedOnBackspace(action.None, action.Composing)},
		{"composing commit", action.Composing, intent.NewCommit(), ja, action.New(action.CommitComposition), action.Transition(action.None)},
		{"composing space", action.Composing, intent.NewWordDelimiter(false), ja, action.New(action.EnterSelection), action.Transition(action.Selecting)},
		{"composing escape", action.Composing, intent.NewCancel(), ja, action.New(action.StopComposition), action.Transition(action.None)},
		{"composing tab", action.Composing, intent.NewTab(), ja, action.New(action.EnterPreview), action.Transition(action.Previewing)},
		{"composing eisu", action.Composing, intent.NewToggleLatin(), ja, action.CommitAndLocale(keyevent.English), action.Transition(action.None)},
		{"composing kana", action.Composing, intent.NewToggleKana(), ja, action.New(action.Consume), action.StayCallback()},
		{"composing down", action.Composing, intent.NewNavigate(intent.Down), ja, action.New(action.EnterSelection), action.Transition(action.Selecting)},
		{"composing left", action.Composing, intent.NewNavigate(intent.Left), ja, action.New(action.Consume), action.StayCallback()},
		{"composing F6", action.Composing, intent.NewFunction(intent.F6), ja, action.New(action.SubmitHiragana), action.Transition(action.None)},
		{"composing F7", action.Composing, intent.NewFunction(intent.F7), ja, action.New(action.SubmitKatakana), action.Transition(action.None)},
		{"composing F8", action.Composing, intent.NewFunction(intent.F8), ja, action.New(action.SubmitHalfWidthKatakana), action.Transition(action.None)},
		{"composing segment", action.Composing, intent.NewShiftSegment(-1), ja, action.Segment(-1), action.Transition(action.Selecting)},
		{"composing suggest", action.Composing, intent.NewSuggest(), suggest, action.New(action.RequestReplaceSuggestion), action.Transition(action.ReplaceSuggestion)},
		{"composing suggest off", action.Composing, intent.NewSuggest(), ja, action.New(action.Consume), action.StayCallback()},
		{"composing unrecognized", action.Composing, intent.NewUnrecognized(), ja, action.New(action.PassThrough), action.StayCallback()},

		{"previewing literal", action.Previewing, intent.NewLiteral("a"), ja, action.Recompose("a"), action.Transition(action.Composing)},
		{"previewing escape", action.Previewing, intent.NewCancel(), ja, action.New(action.HideCandidateWindow), action.Transition(action.Composing)},
		{"previewing tab", action.Previewing, intent.NewTab(), ja, action.New(action.Consume), action.StayCallback()},
		{"previewing commit", action.Previewing, intent.NewCommit(), ja, action.New(action.CommitComposition), action.Transition(action.None)},
		{"previewing space", action.Previewing, intent.NewWordDelimiter(true), ja, action.New(action.EnterSelection), action.Transition(action.Selecting)},

		{"selecting literal", action.Selecting, intent.NewLiteral("a"), ja, action.SubmitAndInsert("a"), action.Transition(action.Composing)},
		{"selecting digit", action.Selecting, intent.NewDigit(3), ja, action.CandidateNumber(3), action.BasedOnSubmit(action.None, action.Selecting)},
		{"selecting digit zero", action.Selecting, intent.NewDigit(0), ja, action.CandidateNumber(10), action.BasedOnSubmit(action.None, action.Selecting)},
		{"selecting commit", action.Selecting, intent.NewCommit(), ja, action.New(action.SubmitCandidate), action.BasedOnSubmit(action.None, action.Selecting)},
		{"selecting space", action.Selecting, intent.NewWordDelimiter(true), ja, action.New(action.SelectNextCandidate), action.StayCallback()},
		{"selecting up", action.Selecting, intent.NewNavigate(intent.Up), ja, action.New(action.SelectPrevCandidate), action.StayCallback()},
		{"selecting down", action.Selecting, intent.NewNavigate(intent.Down), ja, action.New(action.SelectNextCandidate), action.StayCallback()},
		{"selecting left", action.Selecting, intent.NewNavigate(intent.Left), ja, action.Segment(-1), action.StayCallback()},
		{"selecting right", action.Selecting, intent.NewNavigate(intent.Right), ja, action.Segment(1), action.StayCallback()},
		{"selecting tab", action.Selecting, intent.NewTab(), ja, action.New(action.SubmitCandidateAndEnterPreview), action.BasedOnSubmit(action.None, action.Previewing)},
		{"selecting escape", action.Selecting, intent.NewCancel(), ja, action.New(action.HideCandidateWindow), action.Transition(action.Composing)},
		{"selecting forget", action.Selecting, intent.NewForget(), ja, action.New(action.ForgetMemory), action.StayCallback()},
		{"selecting backspace", action.Selecting, intent.NewBackspace(), ja, action.New(action.RemoveLastCompositionUnit), action.BasedOnBackspace(action.None, action.Composing)},
		{"selecting kana", action.Selecting, intent.NewToggleKana(), ja, action.New(action.Consume), action.StayCallback()},

		{"suggestion space", action.ReplaceSuggestion, intent.NewWordDelimiter(true), suggest, action.New(action.SelectNextSuggestion), action.StayCallback()},
		{"suggestion up", action.ReplaceSuggestion, intent.NewNavigate(intent.Up), suggest, action.New(action.SelectPrevSuggestion), action.StayCallback()},
		{"suggestion commit", action.ReplaceSuggestion, intent.NewCommit(), suggest, action.New(action.SubmitSuggestion), action.Transition(action.Composing)},
		{"suggestion escape", action.ReplaceSuggestion, intent.NewCancel(), suggest, action.New(action.HideSuggestionWindow), action.Transition(action.Composing)},
		{"suggestion literal", action.ReplaceSuggestion, intent.NewLiteral("a"), suggest, action.Insert("a"), action.Transition(action.Composing)},
		{"suggestion left", action.ReplaceSuggestion, intent.NewNavigate(intent.Left), suggest, action.New(action.Consume), action.StayCallback()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, cb := Transition(tt.state, tt.in, tt.env)
			assert.Equal(t, tt.want, a)
			assert.Equal(t, tt.cb, cb)
		})
	}
}

func handle(t *testing.T, s *Session, host Host, in intent.Intent) []Step {
	t.Helper()
	steps, err := s.Handle(in, settings.Snapshot{Suggestion: true}, host)
	require.NoError(t, err)
	return steps
}

func TestSessionConvertAndSubmit(t *testing.T) {
	s := NewSession(keyevent.Japanese)
	f := memhost.New()

	handle(t, s, f, intent.NewLiteral("か"))
	handle(t, s, f, intent.NewLiteral("な"))
	assert.Equal(t, action.Composing, s.State())

	handle(t, s, f, intent.NewWordDelimiter(true))
	assert.Equal(t, action.Selecting, s.State())

	handle(t, s, f, intent.NewWordDelimiter(true))
	assert.Equal(t, "カナ", f.Preedit())

	steps := handle(t, s, f, intent.NewCommit())
	require.Len(t, steps, 1)
	assert.Equal(t, action.Selecting, steps[0].From)
	assert.Equal(t, action.None, steps[0].To)
	assert.Equal(t, "カナ", f.Committed())
}

func TestSessionPartialSubmitStaysSelecting(t *testing.T) {
	s := NewSession(keyevent.Japanese)
	f := memhost.New()

	handle(t, s, f, intent.NewLiteral("かな"))
	handle(t, s, f, intent.NewShiftSegment(-1))
	assert.Equal(t, action.Selecting, s.State())

	handle(t, s, f, intent.NewCommit())
	assert.Equal(t, action.Selecting, s.State(), "the rest of the composition is still converting")
	assert.Equal(t, "か", f.Committed())

	handle(t, s, f, intent.NewCommit())
	assert.Equal(t, action.None, s.State())
	assert.Equal(t, "かな", f.Committed())
}

func TestSessionBackspaceBranches(t *testing.T) {
	s := NewSession(keyevent.Japanese)
	f := memhost.New()

	handle(t, s, f, intent.NewLiteral("ab"))
	handle(t, s, f, intent.NewBackspace())
	assert.Equal(t, action.Composing, s.State())
	handle(t, s, f, intent.NewBackspace())
	assert.Equal(t, action.None, s.State())

	steps := handle(t, s, f, intent.NewBackspace())
	assert.Equal(t, action.PassThrough, steps[0].Action.Kind)
}

func TestSessionLocale(t *testing.T) {
	s := NewSession(keyevent.Japanese)
	f := memhost.New()

	handle(t, s, f, intent.NewLiteral("か"))
	handle(t, s, f, intent.NewToggleLatin())
	assert.Equal(t, keyevent.English, s.Locale())
	assert.Equal(t, action.None, s.State())
	assert.Equal(t, "か", f.Committed())

	handle(t, s, f, intent.NewLiteral("x"))
	assert.Equal(t, action.None, s.State())
	assert.Equal(t, "かx", f.Committed())

	handle(t, s, f, intent.NewToggleKana())
	assert.Equal(t, keyevent.Japanese, s.Locale())
}

func TestSessionPrefix(t *testing.T) {
	s := NewSession(keyevent.Japanese)
	f := memhost.New()

	steps := handle(t, s, f, intent.NewCommit().WithPrefix("`"))
	require.Len(t, steps, 2)
	assert.Equal(t, intent.NewLiteral("`"), steps[0].Intent)
	assert.Equal(t, action.Insert("`"), steps[0].Action)
	assert.Equal(t, intent.NewCommit(), steps[1].Intent)
	assert.Equal(t, action.New(action.CommitComposition), steps[1].Action)
	assert.Equal(t, "`", f.Committed())
	assert.Equal(t, action.None, s.State())
}

func TestSessionPrefixInEnglish(t *testing.T) {
	s := NewSession(keyevent.English)
	f := memhost.New()

	handle(t, s, f, intent.NewUnrecognized().WithPrefix("¨"))
	assert.Equal(t, "¨", f.Committed())
}

type failingHost struct {
	memhost.Field
	fail action.Kind
}

var errBoom = errors.New("boom")

func (h *failingHost) Apply(a action.Action) error {
	if a.Kind == h.fail {
		return errBoom
	}
	return h.Field.Apply(a)
}

func TestSessionHostError(t *testing.T) {
	s := NewSession(keyevent.Japanese)
	h := &failingHost{fail: action.EnterSelection}

	handle(t, s, h, intent.NewLiteral("a"))
	_, err := s.Handle(intent.NewWordDelimiter(true), settings.Snapshot{}, h)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom))
	assert.Equal(t, action.Composing, s.State(), "state is unchanged after a failed apply")
}

func TestSessionReset(t *testing.T) {
	s := NewSession(keyevent.English)
	s.SetLocale(keyevent.Japanese)
	handle(t, s, memhost.New(), intent.NewLiteral("a"))
	s.Reset()
	assert.Equal(t, action.None, s.State())
	assert.Equal(t, keyevent.Japanese, s.Locale())
}
