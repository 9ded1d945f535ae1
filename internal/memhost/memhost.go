// Package memhost is an in-memory text field that applies host edit
// actions. It models committed text, the marked composition, the current
// segment, and the candidate and suggestion windows.
//
// Candidates are derived without a dictionary: the segment itself, its
// katakana, half-width katakana, and full-width forms. Submitting a
// candidate other than the first is remembered and ranked first next time
// until ForgetMemory.
package memhost

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"kanakey/internal/action"
	"kanakey/internal/diacritic"
	"kanakey/internal/keyevent"
)

// ErrUnsupported is returned for actions the field does not understand.
var ErrUnsupported = errors.New("memhost: unsupported action")

type unit struct {
	text      string
	intention string // conversion target for composed pieces
}

// Field is an in-memory text field. The zero value is ready to use and is
// in the Japanese locale.
type Field struct {
	committed strings.Builder
	fresh     strings.Builder // committed since the last TakeCommitted

	units  []unit
	segEnd int // end of the current segment in units; 0 means all

	candidates []string
	index      int
	window     bool
	preview    bool

	suggestions []string
	suggestIdx  int
	suggesting  bool
	predictions int

	hint   diacritic.Mark
	locale keyevent.Locale
	memory map[string]string

	applied []action.Action
}

// New returns an empty field.
func New() *Field {
	return &Field{}
}

// CompositionEmpty implements composition.Host.
func (f *Field) CompositionEmpty() bool {
	return len(f.units) == 0
}

// Apply implements composition.Host.
func (f *Field) Apply(a action.Action) error {
	if !a.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupported, a)
	}
	f.applied = append(f.applied, a)
	if a.Kind != action.PendingDiacritic {
		f.hint = 0
	}

	switch a.Kind {
	case action.Consume, action.PassThrough:
	case action.InsertIntoComposition:
		f.insert(a.Text)
	case action.InsertComposedPiece:
		f.insertPiece(a.Piece)
	case action.InsertDirect:
		f.commit(a.Text)
	case action.RemoveLastCompositionUnit:
		f.removeLast()
	case action.CommitComposition:
		f.commit(f.markedText())
		f.clearComposition()
	case action.ReplaceAndRecompose:
		f.commit(f.currentCandidate())
		f.clearComposition()
		f.insert(a.Text)
	case action.StopComposition:
		f.clearComposition()
	case action.EditSegment:
		f.editSegment(a.Number)
	case action.EnterPreview:
		f.segEnd = 0
		f.refreshCandidates()
		f.preview = true
	case action.EnterSelection:
		f.refreshCandidates()
		f.window = true
	case action.SubmitCandidate:
		f.submit()
	case action.SelectNextCandidate:
		f.moveCandidate(1)
	case action.SelectPrevCandidate:
		f.moveCandidate(-1)
	case action.SelectCandidateNumber:
		if a.Number >= 1 && a.Number <= len(f.candidates) {
			f.index = a.Number - 1
			f.submit()
		}
	case action.SubmitCandidateAndInsert:
		f.submit()
		f.insert(a.Text)
	case action.SubmitCandidateAndInsertPiece:
		f.submit()
		f.insertPiece(a.Piece)
	case action.SubmitCandidateAndEnterPreview:
		f.submit()
		if !f.CompositionEmpty() {
			f.window = false
			f.preview = true
		}
	case action.SubmitHiragana:
		f.submitWhole(f.markedText())
	case action.SubmitKatakana:
		f.submitWhole(katakana(f.markedText()))
	case action.SubmitHalfWidthKatakana:
		f.submitWhole(width.Narrow.String(katakana(f.markedText())))
	case action.SelectLocale:
		f.locale = a.Locale
	case action.CommitAndSelectLocale:
		f.commit(f.markedText())
		f.clearComposition()
		f.locale = a.Locale
	case action.ForgetMemory:
		delete(f.memory, f.segmentText())
		f.refreshCandidates()
	case action.RequestPredictiveSuggestion:
		f.predictions++
	case action.RequestReplaceSuggestion:
		f.segEnd = 0
		f.refreshCandidates()
		f.suggestions = nil
		if len(f.candidates) > 1 {
			f.suggestions = append(f.suggestions, f.candidates[1:]...)
		}
		f.suggestIdx = 0
		f.suggesting = len(f.suggestions) > 0
	case action.SelectNextSuggestion:
		f.moveSuggestion(1)
	case action.SelectPrevSuggestion:
		f.moveSuggestion(-1)
	case action.SubmitSuggestion:
		if f.suggesting {
			s := f.suggestions[f.suggestIdx]
			f.units = nil
			f.insert(s)
		}
		f.suggesting = false
	case action.HideSuggestionWindow:
		f.suggesting = false
	case action.HideCandidateWindow:
		f.window = false
		f.preview = false
		f.segEnd = 0
	case action.PendingDiacritic:
		f.hint = a.Mark
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, a)
	}
	return nil
}

func (f *Field) insert(text string) {
	for _, r := range text {
		f.units = append(f.units, unit{text: string(r)})
	}
	f.closeWindows()
}

func (f *Field) insertPiece(p action.Piece) {
	f.units = append(f.units, unit{text: p.Input, intention: p.Intention})
	f.closeWindows()
}

func (f *Field) removeLast() {
	if len(f.units) == 0 {
		return
	}
	f.units = f.units[:len(f.units)-1]
	if f.segEnd > len(f.units) {
		f.segEnd = len(f.units)
	}
	if f.window || f.preview {
		f.refreshCandidates()
	}
	if len(f.units) == 0 {
		f.clearComposition()
	}
}

func (f *Field) editSegment(n int) {
	if len(f.units) == 0 {
		return
	}
	end := f.segEnd
	if end == 0 {
		end = len(f.units)
	}
	end += n
	if end < 1 {
		end = 1
	}
	if end > len(f.units) {
		end = len(f.units)
	}
	f.segEnd = end
	f.refreshCandidates()
	f.window = true
}

// submit commits the selected candidate for the current segment and keeps
// the rest of the composition.
func (f *Field) submit() {
	if len(f.units) == 0 {
		return
	}
	if len(f.candidates) == 0 {
		f.refreshCandidates()
	}
	reading := f.segmentText()
	chosen := f.candidates[f.index]
	if f.index > 0 {
		if f.memory == nil {
			f.memory = make(map[string]string)
		}
		f.memory[reading] = chosen
	}
	f.commit(chosen)

	end := f.segmentEnd()
	f.units = append([]unit(nil), f.units[end:]...)
	f.segEnd = 0
	if len(f.units) == 0 {
		f.clearComposition()
		return
	}
	f.refreshCandidates()
}

func (f *Field) submitWhole(text string) {
	f.commit(text)
	f.clearComposition()
}

func (f *Field) moveCandidate(d int) {
	if len(f.candidates) == 0 {
		return
	}
	f.index = (f.index + d + len(f.candidates)) % len(f.candidates)
}

func (f *Field) moveSuggestion(d int) {
	if !f.suggesting {
		return
	}
	f.suggestIdx = (f.suggestIdx + d + len(f.suggestions)) % len(f.suggestions)
}

func (f *Field) commit(text string) {
	f.committed.WriteString(text)
	f.fresh.WriteString(text)
}

func (f *Field) clearComposition() {
	f.units = nil
	f.segEnd = 0
	f.candidates = nil
	f.index = 0
	f.window = false
	f.preview = false
	f.suggesting = false
}

func (f *Field) closeWindows() {
	f.window = false
	f.preview = false
	f.suggesting = false
	f.segEnd = 0
	f.candidates = nil
	f.index = 0
}

func (f *Field) segmentEnd() int {
	if f.segEnd == 0 || f.segEnd > len(f.units) {
		return len(f.units)
	}
	return f.segEnd
}

func (f *Field) segmentText() string {
	return join(f.units[:f.segmentEnd()], true)
}

// markedText is the composition as displayed: pieces show their intention.
func (f *Field) markedText() string {
	return join(f.units, true)
}

func join(units []unit, intention bool) string {
	var b strings.Builder
	for _, u := range units {
		if intention && u.intention != "" {
			b.WriteString(u.intention)
		} else {
			b.WriteString(u.text)
		}
	}
	return b.String()
}

func (f *Field) currentCandidate() string {
	if len(f.candidates) == 0 {
		return f.markedText()
	}
	return f.candidates[f.index] + join(f.units[f.segmentEnd():], true)
}

func (f *Field) refreshCandidates() {
	f.index = 0
	if len(f.units) == 0 {
		f.candidates = nil
		return
	}
	intended := f.segmentText()
	f.candidates = Candidates(intended, join(f.units[:f.segmentEnd()], false))
	if learned, ok := f.memory[intended]; ok {
		f.candidates = promote(f.candidates, learned)
	}
}

// Candidates lists the conversions offered for a segment: the intended
// form, the typed reading, katakana, half-width katakana, and full width.
// Duplicates are dropped and order is kept.
func Candidates(intended, reading string) []string {
	kata := katakana(intended)
	raw := []string{
		intended,
		reading,
		kata,
		width.Narrow.String(kata),
		width.Widen.String(intended),
	}
	seen := make(map[string]bool, len(raw))
	out := raw[:0]
	for _, c := range raw {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func promote(list []string, first string) []string {
	out := []string{first}
	for _, c := range list {
		if c != first {
			out = append(out, c)
		}
	}
	return out
}

// katakana shifts hiragana to katakana and leaves everything else as is.
func katakana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ぁ' && r <= 'ゖ' || r == 'ゝ' || r == 'ゞ' {
			return r + 0x60
		}
		return r
	}, s)
}

// Committed returns all committed text.
func (f *Field) Committed() string { return f.committed.String() }

// TakeCommitted returns the text committed since the previous call.
func (f *Field) TakeCommitted() string {
	s := f.fresh.String()
	f.fresh.Reset()
	return s
}

// Marked returns the composition, with composed pieces shown as their
// intended form.
func (f *Field) Marked() string { return f.markedText() }

// Segment returns the current segment of the composition.
func (f *Field) Segment() string {
	if len(f.units) == 0 {
		return ""
	}
	return f.segmentText()
}

// Preedit returns what the host displays inline: the selected candidate
// followed by the unconverted rest while converting, else the marked text.
// A pending diacritic is shown at the end.
func (f *Field) Preedit() string {
	var s string
	switch {
	case f.suggesting:
		s = f.suggestions[f.suggestIdx]
	case f.window || f.preview:
		s = f.currentCandidate()
	default:
		s = f.markedText()
	}
	if f.hint != 0 {
		s += f.hint.String()
	}
	return s
}

// Candidates returns the candidate list for the current segment.
func (f *Field) Candidates() []string {
	return append([]string(nil), f.candidates...)
}

// CandidateIndex returns the selected candidate.
func (f *Field) CandidateIndex() int { return f.index }

// CandidateWindowVisible reports whether the candidate window is shown.
func (f *Field) CandidateWindowVisible() bool { return f.window }

// Previewing reports whether the first candidate is previewed inline.
func (f *Field) Previewing() bool { return f.preview }

// Suggestions returns the visible replacement suggestions, if any.
func (f *Field) Suggestions() []string {
	if !f.suggesting {
		return nil
	}
	return append([]string(nil), f.suggestions...)
}

// Predictions returns how many predictive suggestions were requested.
func (f *Field) Predictions() int { return f.predictions }

// Hint returns the pending diacritic, if any.
func (f *Field) Hint() (diacritic.Mark, bool) { return f.hint, f.hint != 0 }

// Locale returns the last locale selected through an action.
func (f *Field) Locale() keyevent.Locale { return f.locale }

// Applied returns every action applied so far.
func (f *Field) Applied() []action.Action {
	return append([]action.Action(nil), f.applied...)
}

// CommitAll commits what is currently displayed, as a client does when it
// loses focus, and clears the composition.
func (f *Field) CommitAll() {
	if len(f.units) > 0 {
		if f.window || f.preview {
			f.commit(f.currentCandidate())
		} else {
			f.commit(f.markedText())
		}
	}
	f.clearComposition()
	f.hint = 0
}

// Discard drops the composition and any pending diacritic without
// committing.
func (f *Field) Discard() {
	f.clearComposition()
	f.hint = 0
}
