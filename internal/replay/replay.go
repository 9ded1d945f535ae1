// Package replay runs scripted key sequences through the engine and an
// in-memory text field. Scripts are YAML:
//
//	locale: japanese
//	settings:
//	  input.half_width_space: true
//	events:
//	  - {key: e, mods: [option], chars: "´", expect: 'begin-dead-key("´")'}
//	  - {key: e, chars: e, expect: 'literal-input("é")'}
//	  - {key: return, chars: "\r"}
//	  - flush: true
//
// An event with flush set delivers a pending dead-key mark, as a host does
// when the field loses focus.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"kanakey/internal/action"
	"kanakey/internal/ime"
	"kanakey/internal/keycode"
	"kanakey/internal/keyevent"
	"kanakey/internal/logging"
	"kanakey/internal/memhost"
	"kanakey/internal/settings"
)

// ErrMismatch is wrapped by the error Run returns when an event classified
// differently than its expect field says.
var ErrMismatch = errors.New("replay: expectation mismatch")

// Script is a decoded replay document.
type Script struct {
	Name     string         `yaml:"name,omitempty"`
	Locale   string         `yaml:"locale,omitempty"`
	Settings map[string]any `yaml:"settings,omitempty"`
	Events   []Event        `yaml:"events"`
}

// Event is one scripted key-down.
type Event struct {
	Key    string   `yaml:"key,omitempty"`
	Mods   []string `yaml:"mods,omitempty"`
	Chars  string   `yaml:"chars,omitempty"`
	Expect string   `yaml:"expect,omitempty"`
	Flush  bool     `yaml:"flush,omitempty"`
}

// Parse decodes a script and checks that every event names a key.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("replay: empty script")
		}
		return nil, fmt.Errorf("replay: decode: %w", err)
	}
	for i, ev := range s.Events {
		if ev.Flush {
			if ev.Key != "" {
				return nil, fmt.Errorf("replay: event %d: flush events take no key", i)
			}
			continue
		}
		if _, err := keycode.Parse(ev.Key); err != nil {
			return nil, fmt.Errorf("replay: event %d: %w", i, err)
		}
		if _, err := keyevent.ParseModifiers(ev.Mods); err != nil {
			return nil, fmt.Errorf("replay: event %d: %w", i, err)
		}
	}
	return &s, nil
}

// ParseFile reads and decodes the script at path.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data))
}

// Options configures Run.
type Options struct {
	Logger  *logging.Logger
	Journal ime.Recorder
}

// EventResult is what one event did.
type EventResult struct {
	Index    int
	Event    Event
	Rule     string
	Intent   string
	Actions  []string
	From     action.State
	To       action.State
	Consumed bool
	Mismatch bool
}

// Report is the outcome of a whole script.
type Report struct {
	Events    []EventResult
	Committed string
	Marked    string
	Preedit   string
	State     action.State
	Locale    keyevent.Locale
	Stats     ime.Stats
}

// Mismatches returns the events whose expectation failed.
func (r *Report) Mismatches() []EventResult {
	var out []EventResult
	for _, ev := range r.Events {
		if ev.Mismatch {
			out = append(out, ev)
		}
	}
	return out
}

// Run plays s from a fresh engine and field. Every event runs even after a
// mismatch; the returned error then wraps ErrMismatch and the report is
// complete. Engine failures stop the run.
func Run(s *Script, opts Options) (*Report, error) {
	locale := keyevent.Japanese
	if s.Locale != "" {
		l, err := keyevent.ParseLocale(s.Locale)
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		locale = l
	}
	prefs, err := snapshot(s.Settings)
	if err != nil {
		return nil, err
	}

	engine := ime.NewEngine(ime.Options{
		Locale:   locale,
		Settings: settings.Static(prefs),
		Logger:   opts.Logger,
		Journal:  opts.Journal,
	})
	field := memhost.New()

	report := &Report{}
	var mismatches []string
	for i, ev := range s.Events {
		res, err := play(engine, field, ev)
		if err != nil {
			return report, fmt.Errorf("replay: event %d (%s): %w", i, describe(ev), err)
		}

		out := EventResult{
			Index:    i,
			Event:    ev,
			Rule:     res.Decision.Rule,
			Intent:   res.Decision.Intent.String(),
			Consumed: res.Consumed,
		}
		if len(res.Steps) > 0 {
			out.From = res.Steps[0].From
			out.To = res.Steps[len(res.Steps)-1].To
		} else {
			out.From, out.To = engine.State(), engine.State()
		}
		for _, st := range res.Steps {
			out.Actions = append(out.Actions, st.Action.String())
		}
		if ev.Expect != "" && ev.Expect != out.Intent {
			out.Mismatch = true
			mismatches = append(mismatches,
				fmt.Sprintf("event %d (%s): got %s, want %s", i, describe(ev), out.Intent, ev.Expect))
		}
		report.Events = append(report.Events, out)
	}

	report.Committed = field.Committed()
	report.Marked = field.Marked()
	report.Preedit = field.Preedit()
	report.State = engine.State()
	report.Locale = engine.Locale()
	report.Stats = engine.Stats()

	if len(mismatches) > 0 {
		return report, fmt.Errorf("%w:\n  %s", ErrMismatch, strings.Join(mismatches, "\n  "))
	}
	return report, nil
}

func play(engine *ime.Engine, field *memhost.Field, ev Event) (ime.Result, error) {
	if ev.Flush {
		res, _, err := engine.Flush(field)
		return res, err
	}
	code, err := keycode.Parse(ev.Key)
	if err != nil {
		return ime.Result{}, err
	}
	mods, err := keyevent.ParseModifiers(ev.Mods)
	if err != nil {
		return ime.Result{}, err
	}
	return engine.ProcessKey(code, mods, ev.Chars, field)
}

func snapshot(values map[string]any) (settings.Snapshot, error) {
	known := make(map[settings.Key]bool)
	for _, k := range settings.Keys() {
		known[k] = true
	}
	typed := make(map[settings.Key]any, len(values))
	for k, v := range values {
		if !known[settings.Key(k)] {
			return settings.Snapshot{}, fmt.Errorf("replay: unknown setting %q", k)
		}
		typed[settings.Key(k)] = v
	}
	prefs, errs := settings.FromValues(typed)
	if len(errs) > 0 {
		return settings.Snapshot{}, fmt.Errorf("replay: %w", errs[0])
	}
	return prefs, nil
}

func describe(ev Event) string {
	if ev.Flush {
		return "flush"
	}
	if len(ev.Mods) == 0 {
		return ev.Key
	}
	return strings.Join(ev.Mods, "+") + "+" + ev.Key
}
