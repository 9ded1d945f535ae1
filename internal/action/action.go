// Package action defines the vocabulary a composition state machine uses to
// drive a host text field: edit actions, composition states, and the
// callbacks that select the next state after an action is applied.
package action

import (
	"fmt"
	"strconv"

	"kanakey/internal/diacritic"
	"kanakey/internal/keyevent"
)

// Kind discriminates an Action. The zero Kind is Invalid so that a
// forgotten table entry is detectable.
type Kind uint8

const (
	Invalid Kind = iota

	// Consume swallows the key with no visible effect.
	Consume
	// PassThrough lets the host handle the key natively.
	PassThrough

	InsertIntoComposition
	InsertComposedPiece
	// InsertDirect inserts text bypassing the composition. Only valid
	// while nothing is being composed.
	InsertDirect
	RemoveLastCompositionUnit
	CommitComposition
	// ReplaceAndRecompose commits the previewed candidate, then starts a
	// new composition with Text.
	ReplaceAndRecompose
	StopComposition

	// EditSegment moves the current segment boundary by Number units.
	EditSegment
	EnterPreview
	EnterSelection

	SubmitCandidate
	SelectNextCandidate
	SelectPrevCandidate
	// SelectCandidateNumber submits the Number-th visible candidate (1-10).
	SelectCandidateNumber
	// SubmitCandidateAndInsert may commit only part of the composition.
	SubmitCandidateAndInsert
	SubmitCandidateAndInsertPiece
	SubmitCandidateAndEnterPreview

	SubmitHiragana
	SubmitKatakana
	SubmitHalfWidthKatakana

	SelectLocale
	CommitAndSelectLocale

	ForgetMemory

	RequestPredictiveSuggestion
	RequestReplaceSuggestion
	SelectNextSuggestion
	SelectPrevSuggestion
	SubmitSuggestion
	HideSuggestionWindow

	HideCandidateWindow

	// PendingDiacritic tells the host a dead-key mark is waiting. Hosts
	// may show it provisionally; it is not inserted.
	PendingDiacritic

	numKinds
)

var kindNames = [...]string{
	Invalid:                        "invalid",
	Consume:                        "consume",
	PassThrough:                    "pass-through",
	InsertIntoComposition:          "insert-into-composition",
	InsertComposedPiece:            "insert-composed-piece",
	InsertDirect:                   "insert-direct",
	RemoveLastCompositionUnit:      "remove-last-composition-unit",
	CommitComposition:              "commit-composition",
	ReplaceAndRecompose:            "replace-and-recompose",
	StopComposition:                "stop-composition",
	EditSegment:                    "edit-segment",
	EnterPreview:                   "enter-preview",
	EnterSelection:                 "enter-selection",
	SubmitCandidate:                "submit-candidate",
	SelectNextCandidate:            "select-next-candidate",
	SelectPrevCandidate:            "select-prev-candidate",
	SelectCandidateNumber:          "select-candidate-number",
	SubmitCandidateAndInsert:       "submit-candidate-and-insert",
	SubmitCandidateAndInsertPiece:  "submit-candidate-and-insert-piece",
	SubmitCandidateAndEnterPreview: "submit-candidate-and-enter-preview",
	SubmitHiragana:                 "submit-hiragana",
	SubmitKatakana:                 "submit-katakana",
	SubmitHalfWidthKatakana:        "submit-half-width-katakana",
	SelectLocale:                   "select-locale",
	CommitAndSelectLocale:          "commit-and-select-locale",
	ForgetMemory:                   "forget-memory",
	RequestPredictiveSuggestion:    "request-predictive-suggestion",
	RequestReplaceSuggestion:       "request-replace-suggestion",
	SelectNextSuggestion:           "select-next-suggestion",
	SelectPrevSuggestion:           "select-prev-suggestion",
	SubmitSuggestion:               "submit-suggestion",
	HideSuggestionWindow:           "hide-suggestion-window",
	HideCandidateWindow:            "hide-candidate-window",
	PendingDiacritic:               "pending-diacritic",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds returns every valid action kind.
func Kinds() []Kind {
	out := make([]Kind, 0, numKinds-1)
	for k := Consume; k < numKinds; k++ {
		out = append(out, k)
	}
	return out
}

// Piece is a composition unit whose typed input differs from what it
// should become, such as a digit typed in Japanese mode.
type Piece struct {
	Input     string
	Intention string
}

// Action is one host edit action.
type Action struct {
	Kind   Kind
	Text   string
	Piece  Piece
	Number int
	Locale keyevent.Locale
	Mark   diacritic.Mark
}

// Valid reports whether a has a known, non-zero kind.
func (a Action) Valid() bool {
	return a.Kind > Invalid && a.Kind < numKinds
}

// Constructors for actions that carry data.

func New(k Kind) Action { return Action{Kind: k} }

func Insert(text string) Action { return Action{Kind: InsertIntoComposition, Text: text} }

func InsertPiece(p Piece) Action { return Action{Kind: InsertComposedPiece, Piece: p} }

func Direct(text string) Action { return Action{Kind: InsertDirect, Text: text} }

func Recompose(text string) Action { return Action{Kind: ReplaceAndRecompose, Text: text} }

func Segment(offset int) Action { return Action{Kind: EditSegment, Number: offset} }

func CandidateNumber(n int) Action { return Action{Kind: SelectCandidateNumber, Number: n} }

func SubmitAndInsert(text string) Action {
	return Action{Kind: SubmitCandidateAndInsert, Text: text}
}

func SubmitAndInsertPiece(p Piece) Action {
	return Action{Kind: SubmitCandidateAndInsertPiece, Piece: p}
}

func Locale(l keyevent.Locale) Action { return Action{Kind: SelectLocale, Locale: l} }

func CommitAndLocale(l keyevent.Locale) Action {
	return Action{Kind: CommitAndSelectLocale, Locale: l}
}

func Diacritic(m diacritic.Mark) Action { return Action{Kind: PendingDiacritic, Mark: m} }

func (a Action) String() string {
	switch a.Kind {
	case InsertIntoComposition, InsertDirect, ReplaceAndRecompose, SubmitCandidateAndInsert:
		return fmt.Sprintf("%s(%s)", a.Kind, strconv.QuoteToGraphic(a.Text))
	case InsertComposedPiece, SubmitCandidateAndInsertPiece:
		return fmt.Sprintf("%s(%s→%s)", a.Kind,
			strconv.QuoteToGraphic(a.Piece.Input), strconv.QuoteToGraphic(a.Piece.Intention))
	case EditSegment:
		return fmt.Sprintf("%s(%+d)", a.Kind, a.Number)
	case SelectCandidateNumber:
		return fmt.Sprintf("%s(%d)", a.Kind, a.Number)
	case SelectLocale, CommitAndSelectLocale:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Locale)
	case PendingDiacritic:
		return fmt.Sprintf("%s(%s)", a.Kind, strconv.QuoteToGraphic(a.Mark.String()))
	}
	return a.Kind.String()
}

// Redacted formats a without the text it carries, for logs and the journal
// when typed input must not be recorded.
func (a Action) Redacted() string {
	switch a.Kind {
	case InsertIntoComposition, InsertDirect, ReplaceAndRecompose, SubmitCandidateAndInsert,
		InsertComposedPiece, SubmitCandidateAndInsertPiece:
		return a.Kind.String()
	}
	return a.String()
}
