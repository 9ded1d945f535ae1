package config

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"kanakey/internal/settings"
)

// field applies one stable key to a Config. set returns a warning when the
// value cannot be used; the field then keeps its current value.
type field struct {
	key  string
	set  func(c *Config, v any) *ValidationError
	show func(c *Config) any
}

var fields = []field{
	intField("version", 1, Version, func(c *Config) *int { return &c.Version }),
	boolField(string(settings.KeyHalfWidthSpace), func(c *Config) *bool { return &c.Input.HalfWidthSpace }),
	boolField(string(settings.KeyCommaPeriod), func(c *Config) *bool { return &c.Input.CommaPeriod }),
	boolField(string(settings.KeyBackslash), func(c *Config) *bool { return &c.Input.Backslash }),
	boolField(string(settings.KeyLiveConversion), func(c *Config) *bool { return &c.Conversion.Live }),
	boolField(string(settings.KeySuggestion), func(c *Config) *bool { return &c.Conversion.Suggestion }),
	boolField("journal.enabled", func(c *Config) *bool { return &c.Journal.Enabled }),
	stringField("journal.path", nil, func(c *Config) *string { return &c.Journal.Path }),
	intField("journal.max_entries", 0, MaxJournalEntries, func(c *Config) *int { return &c.Journal.MaxEntries }),
	stringField("logging.level", logLevels, func(c *Config) *string { return &c.Logging.Level }),
	stringField("logging.format", logFormats, func(c *Config) *string { return &c.Logging.Format }),
	stringField("logging.output", logOutputs, func(c *Config) *string { return &c.Logging.Output }),
	stringField("logging.file_path", nil, func(c *Config) *string { return &c.Logging.FilePath }),
	intField("logging.max_size_mb", 1, 1024, func(c *Config) *int { return &c.Logging.MaxSizeMB }),
	intField("logging.max_backups", 0, 100, func(c *Config) *int { return &c.Logging.MaxBackups }),
	boolField("logging.redact_input", func(c *Config) *bool { return &c.Logging.RedactInput }),
	stringField("ibus.engine_name", nil, func(c *Config) *string { return &c.IBus.EngineName }),
}

// Keys returns every stable configuration key in declaration order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// Get returns the value of a stable key.
func (c *Config) Get(key string) (any, bool) {
	for _, f := range fields {
		if f.key == key {
			return f.show(c), true
		}
	}
	return nil, false
}

// Set assigns a stable key from a loosely typed value, as a config file or
// the environment would.
func (c *Config) Set(key string, v any) error {
	for _, f := range fields {
		if f.key == key {
			if err := f.set(c, v); err != nil {
				return err
			}
			return nil
		}
	}
	return &ValidationError{Field: key, Message: "unknown key"}
}

// EnvName returns the environment variable overriding key.
func EnvName(key string) string {
	return "KANAKEY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// ApplyEnvOverrides applies KANAKEY_* environment variables. Unusable values
// are reported and ignored.
func (c *Config) ApplyEnvOverrides() ValidationErrors {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) ValidationErrors {
	var warns ValidationErrors
	for _, f := range fields {
		v, ok := lookup(EnvName(f.key))
		if !ok {
			continue
		}
		if err := f.set(c, v); err != nil {
			err.Field = EnvName(f.key)
			warns = append(warns, *err)
		}
	}
	return warns
}

// applyRaw copies every known key found in raw into c. A bad value keeps the
// default and yields a warning; the rest of the document still applies.
func applyRaw(c *Config, raw map[string]any) ValidationErrors {
	var warns ValidationErrors
	for _, f := range fields {
		v, ok := lookup(raw, f.key)
		if !ok {
			continue
		}
		if err := f.set(c, v); err != nil {
			warns = append(warns, *err)
		}
	}
	return append(warns, unknownKeys(raw, "")...)
}

func lookup(raw map[string]any, key string) (any, bool) {
	parts := strings.Split(key, ".")
	var cur any = raw
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[p]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func unknownKeys(m map[string]any, prefix string) ValidationErrors {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)

	var warns ValidationErrors
	for _, k := range names {
		path := prefix + k
		switch {
		case isKey(path):
		case isSection(path):
			if sub, ok := m[k].(map[string]any); ok {
				warns = append(warns, unknownKeys(sub, path+".")...)
			} else {
				warns = append(warns, ValidationError{Field: path, Message: "expected a table", Warning: true})
			}
		default:
			warns = append(warns, ValidationError{Field: path, Message: "unknown key, ignored", Warning: true})
		}
	}
	return warns
}

func isKey(path string) bool {
	for _, f := range fields {
		if f.key == path {
			return true
		}
	}
	return false
}

func isSection(path string) bool {
	for _, f := range fields {
		if strings.HasPrefix(f.key, path+".") {
			return true
		}
	}
	return false
}

func invalid(key string, v any, msg string) *ValidationError {
	return &ValidationError{
		Field:   key,
		Message: fmt.Sprintf("%s, got %#v; using default", msg, v),
		Warning: true,
	}
}

func boolField(key string, ptr func(*Config) *bool) field {
	return field{
		key: key,
		set: func(c *Config, v any) *ValidationError {
			b, ok := settings.ParseBool(v)
			if !ok {
				return invalid(key, v, "expected a boolean")
			}
			*ptr(c) = b
			return nil
		},
		show: func(c *Config) any { return *ptr(c) },
	}
}

func intField(key string, min, max int, ptr func(*Config) *int) field {
	return field{
		key: key,
		set: func(c *Config, v any) *ValidationError {
			n, ok := toInt(v)
			if !ok {
				return invalid(key, v, "expected an integer")
			}
			if n < min || n > max {
				return invalid(key, v, fmt.Sprintf("expected a value between %d and %d", min, max))
			}
			*ptr(c) = n
			return nil
		},
		show: func(c *Config) any { return *ptr(c) },
	}
}

// stringField accepts any non-empty string, or one of allowed when given.
func stringField(key string, allowed []string, ptr func(*Config) *string) field {
	return field{
		key: key,
		set: func(c *Config, v any) *ValidationError {
			s, ok := v.(string)
			if !ok {
				return invalid(key, v, "expected a string")
			}
			s = strings.TrimSpace(s)
			if allowed != nil {
				s = strings.ToLower(s)
				if !oneOf(s, allowed) {
					return invalid(key, v, "expected one of "+strings.Join(allowed, ", "))
				}
			}
			if s == "" {
				return invalid(key, v, "expected a non-empty string")
			}
			*ptr(c) = s
			return nil
		},
		show: func(c *Config) any { return *ptr(c) },
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		if t < math.MinInt32 || t > math.MaxInt32 {
			return 0, false
		}
		return int(t), true
	case uint64:
		if t > math.MaxInt32 {
			return 0, false
		}
		return int(t), true
	case float64:
		if t != math.Trunc(t) || math.Abs(t) > math.MaxInt32 {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}
