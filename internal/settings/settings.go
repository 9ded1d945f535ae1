// Package settings holds the read-only preference snapshot consulted while
// interpreting keystrokes.
//
// The snapshot is injected into every classification call; nothing in the
// keystroke core reads process-wide preference state directly.
package settings

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

// Key is a stable preference key. Configuration files, environment
// overrides, and hosts all address preferences by these names.
type Key string

const (
	// KeyHalfWidthSpace makes the space bar prefer a half-width space;
	// shift inverts the preference.
	KeyHalfWidthSpace Key = "input.half_width_space"

	// KeyCommaPeriod rewrites 、。 to ，． after punctuation remapping.
	KeyCommaPeriod Key = "input.comma_period"

	// KeyBackslash makes the yen key type a backslash (option types ¥).
	KeyBackslash Key = "input.backslash"

	// KeyLiveConversion enables live conversion in the composition engine.
	KeyLiveConversion Key = "conversion.live"

	// KeySuggestion enables suggestion requests (control+S).
	KeySuggestion Key = "conversion.suggestion"
)

// Snapshot is an immutable view of the boolean preferences.
type Snapshot struct {
	HalfWidthSpace bool
	CommaPeriod    bool
	Backslash      bool
	LiveConversion bool
	Suggestion     bool
}

// Defaults returns the documented default preferences. Every key defaults
// to false.
func Defaults() Snapshot {
	return Snapshot{}
}

// Keys returns all known keys in sorted order.
func Keys() []Key {
	keys := []Key{
		KeyHalfWidthSpace,
		KeyCommaPeriod,
		KeyBackslash,
		KeyLiveConversion,
		KeySuggestion,
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Bool returns the value stored under k. Unknown keys read as false.
func (s Snapshot) Bool(k Key) bool {
	switch k {
	case KeyHalfWidthSpace:
		return s.HalfWidthSpace
	case KeyCommaPeriod:
		return s.CommaPeriod
	case KeyBackslash:
		return s.Backslash
	case KeyLiveConversion:
		return s.LiveConversion
	case KeySuggestion:
		return s.Suggestion
	}
	return false
}

// With returns a copy of s with k set to v. Unknown keys are ignored.
func (s Snapshot) With(k Key, v bool) Snapshot {
	switch k {
	case KeyHalfWidthSpace:
		s.HalfWidthSpace = v
	case KeyCommaPeriod:
		s.CommaPeriod = v
	case KeyBackslash:
		s.Backslash = v
	case KeyLiveConversion:
		s.LiveConversion = v
	case KeySuggestion:
		s.Suggestion = v
	}
	return s
}

// InvalidValueError reports a preference value that could not be read as a
// boolean. The affected key keeps its default.
type InvalidValueError struct {
	Key   Key
	Value any
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("settings: %s: invalid value %#v, using default", e.Key, e.Value)
}

// FromValues builds a snapshot from loosely typed values. Values that are
// not booleans (or boolean-like strings and integers) fall back to the
// default for their key and are reported, never propagated as failures.
func FromValues(values map[Key]any) (Snapshot, []error) {
	s := Defaults()
	var errs []error
	for _, k := range Keys() {
		raw, ok := values[k]
		if !ok {
			continue
		}
		v, ok := ParseBool(raw)
		if !ok {
			errs = append(errs, &InvalidValueError{Key: k, Value: raw})
			continue
		}
		s = s.With(k, v)
	}
	return s, errs
}

// ParseBool interprets v as a boolean. It accepts bool, the integers 0 and
// 1, and the strings true/false, yes/no, on/off, 1/0 in any case.
func ParseBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case int:
		return intBool(int64(t))
	case int64:
		return intBool(t)
	case float64:
		if t == 0 || t == 1 {
			return t == 1, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "on", "1":
			return true, true
		case "false", "no", "off", "0":
			return false, true
		}
	}
	return false, false
}

func intBool(n int64) (bool, bool) {
	if n == 0 || n == 1 {
		return n == 1, true
	}
	return false, false
}

// Provider supplies the current snapshot.
type Provider interface {
	Snapshot() Snapshot
}

// Static is a Provider that always returns the same snapshot.
type Static Snapshot

// Snapshot implements Provider.
func (s Static) Snapshot() Snapshot {
	return Snapshot(s)
}

// Atomic is a Provider whose snapshot can be replaced concurrently, for
// example by a configuration hot reload.
type Atomic struct {
	p atomic.Pointer[Snapshot]
}

// NewAtomic returns an Atomic provider holding s.
func NewAtomic(s Snapshot) *Atomic {
	a := &Atomic{}
	a.Store(s)
	return a
}

// Store replaces the current snapshot.
func (a *Atomic) Store(s Snapshot) {
	a.p.Store(&s)
}

// Snapshot implements Provider. A zero Atomic yields Defaults.
func (a *Atomic) Snapshot() Snapshot {
	if p := a.p.Load(); p != nil {
		return *p
	}
	return Defaults()
}
