package ime

import (
	"strings"
	"sync"

	"kanakey/internal/action"
	"kanakey/internal/classifier"
	"kanakey/internal/composition"
	"kanakey/internal/journal"
	"kanakey/internal/keycode"
	"kanakey/internal/keyevent"
	"kanakey/internal/logging"
	"kanakey/internal/settings"
)

// Recorder receives one entry per processed key. *journal.Journal
// implements it.
type Recorder interface {
	Record(e *journal.Entry) error
}

// Options configures an Engine.
type Options struct {
	// Locale is the initial input mode.
	Locale keyevent.Locale

	// Settings supplies preferences for every key. Nil means defaults.
	Settings settings.Provider

	// Logger receives per-key debug records. Nil discards.
	Logger *logging.Logger

	// Journal, when set, records every processed key.
	Journal Recorder
}

// Result describes what the engine did with one key.
type Result struct {
	Decision classifier.Decision
	Steps    []composition.Step

	// Consumed is false when the key should reach the application
	// unchanged.
	Consumed bool
}

// Stats counts processed keys.
type Stats struct {
	Keys          uint64
	Consumed      uint64
	PassedThrough uint64
	Errors        uint64
}

// Engine ties the classifier, the composition session and the settings
// together. It is safe for concurrent use; calls are serialized.
type Engine struct {
	mu         sync.Mutex
	classifier *classifier.Classifier
	session    *composition.Session
	settings   settings.Provider
	logger     *logging.Logger
	journal    Recorder
	stats      Stats
}

// NewEngine creates an engine in the idle state.
func NewEngine(opts Options) *Engine {
	if opts.Settings == nil {
		opts.Settings = settings.Static(settings.Defaults())
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Engine{
		classifier: classifier.New(),
		session:    composition.NewSession(opts.Locale),
		settings:   opts.Settings,
		logger:     opts.Logger.WithComponent("engine"),
		journal:    opts.Journal,
	}
}

// ProcessKey classifies one key-down and drives host with the resulting
// intent. The event is built from the session's locale and the current
// settings snapshot.
func (e *Engine) ProcessKey(code keycode.Code, mods keyevent.Modifiers, chars string, host composition.Host) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ev := keyevent.New(code, mods, chars).
		WithLocale(e.session.Locale()).
		WithSettings(e.settings.Snapshot())

	var res Result
	err := logging.Guard(e.logger, "process-key", func() error {
		res.Decision = e.classifier.Decide(ev)
		steps, err := e.session.Handle(res.Decision.Intent, ev.Settings, host)
		res.Steps = steps
		return err
	})
	res.Consumed = consumed(res.Steps)

	e.stats.Keys++
	if err != nil {
		e.stats.Errors++
		e.recover()
		e.logger.Error("key processing failed", "code", code.String(), "error", err)
		return res, err
	}
	if res.Consumed {
		e.stats.Consumed++
	} else {
		e.stats.PassedThrough++
	}

	e.trace(ev, res)
	return res, nil
}

// Flush delivers a pending dead-key mark as literal text, for example when
// the client loses focus. It reports false when nothing was pending.
func (e *Engine) Flush(host composition.Host) (Result, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	in, ok := e.classifier.Flush()
	if !ok {
		return Result{}, false, nil
	}
	res := Result{Decision: classifier.Decision{Intent: in, Rule: "flush"}}
	steps, err := e.session.Handle(in, e.settings.Snapshot(), host)
	res.Steps = steps
	res.Consumed = consumed(steps)
	if err != nil {
		e.stats.Errors++
		e.recover()
		return res, true, err
	}
	e.logger.Debug("flushed dead key", "steps", len(steps))
	return res, true, nil
}

// Reset drops any pending mark and returns the session to idle.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.classifier.Reset()
	e.session.Reset()
}

func (e *Engine) recover() {
	e.classifier.Reset()
	e.session.Reset()
}

// State returns the current composition state.
func (e *Engine) State() action.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.State()
}

// Locale returns the active input mode.
func (e *Engine) Locale() keyevent.Locale {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Locale()
}

// SetLocale switches the input mode.
func (e *Engine) SetLocale(l keyevent.Locale) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.SetLocale(l)
}

// SetSettings replaces the settings provider.
func (e *Engine) SetSettings(p settings.Provider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = p
}

// Stats returns a copy of the counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// consumed reports whether the key itself was handled. Only the last step
// carries the key's own intent; earlier steps deliver a carried dead-key
// mark, which is committed even when the key then passes through.
func consumed(steps []composition.Step) bool {
	if len(steps) == 0 {
		return false
	}
	return steps[len(steps)-1].Action.Kind != action.PassThrough
}

func (e *Engine) trace(ev keyevent.Event, res Result) {
	if len(res.Steps) == 0 {
		return
	}
	first, last := res.Steps[0], res.Steps[len(res.Steps)-1]
	actions := make([]string, len(res.Steps))
	redacted := make([]string, len(res.Steps))
	for i, st := range res.Steps {
		actions[i] = st.Action.String()
		redacted[i] = st.Action.Redacted()
	}
	joined := strings.Join(actions, ", ")
	joinedRedacted := strings.Join(redacted, ", ")

	loggedIntent, loggedAction := res.Decision.Intent.String(), joined
	if e.logger.RedactsInput() {
		loggedIntent, loggedAction = res.Decision.Intent.Redacted(), joinedRedacted
	}
	e.logger.Debug("key",
		"code", ev.Code.String(),
		"mods", ev.Modifiers.String(),
		"chars", ev.Characters,
		"rule", res.Decision.Rule,
		"intent", loggedIntent,
		"action", loggedAction,
		"from", first.From.String(),
		"to", last.To.String(),
	)

	if e.journal == nil {
		return
	}
	entry := &journal.Entry{
		Code:      ev.Code,
		Modifiers: ev.Modifiers,
		Locale:    ev.Locale,
		Chars:     ev.Characters,
		Rule:      res.Decision.Rule,
		Intent:    res.Decision.Intent.String(),
		Action:    joined,
		From:      first.From.String(),
		To:        last.To.String(),

		IntentRedacted: res.Decision.Intent.Redacted(),
		ActionRedacted: joinedRedacted,
	}
	if err := e.journal.Record(entry); err != nil {
		e.logger.Warn("journal write failed", "error", err)
	}
}
