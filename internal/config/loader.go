package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"kanakey/internal/logging"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Result is a loaded configuration together with everything that was
// recovered from while reading it.
type Result struct {
	Config    *Config
	Warnings  ValidationErrors
	Migration *MigrationResult

	// Found is false when the file did not exist and defaults were used.
	Found bool
}

// Load reads the configuration at path. A missing file yields defaults.
// Syntax errors and cross-field validation failures are returned as errors;
// individual bad values fall back to their defaults and become warnings.
func Load(path string) (*Result, error) {
	return load(path, os.LookupEnv)
}

func load(path string, env func(string) (string, bool)) (*Result, error) {
	res := &Result{Config: DefaultConfig()}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		res.Found = true
		raw, err := decodeRaw(data, filepath.Ext(path))
		if err != nil {
			return nil, err
		}
		res.Migration = migrateRaw(raw)
		res.Warnings = applyRaw(res.Config, raw)

		schemaWarns, err := ValidateSchema(raw)
		if err != nil {
			return nil, err
		}
		res.Warnings = mergeWarnings(res.Warnings, schemaWarns)
	}

	res.Warnings = append(res.Warnings, res.Config.applyEnv(env)...)

	if err := res.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return res, nil
}

// mergeWarnings appends the schema findings for fields not already
// reported.
func mergeWarnings(have, extra ValidationErrors) ValidationErrors {
	seen := make(map[string]bool, len(have))
	for _, w := range have {
		seen[w.Field] = true
	}
	for _, w := range extra {
		if !seen[w.Field] {
			have = append(have, w)
			seen[w.Field] = true
		}
	}
	return have
}

// decodeRaw parses a document by extension into a generic map.
func decodeRaw(data []byte, ext string) (map[string]any, error) {
	raw := make(map[string]any)
	switch ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return autoDetectAndParse(data)
	}
	return raw, nil
}

// autoDetectAndParse attempts to parse the config in multiple formats.
func autoDetectAndParse(data []byte) (map[string]any, error) {
	raw := make(map[string]any)
	if _, err := toml.Decode(string(data), &raw); err == nil {
		return raw, nil
	}
	raw = make(map[string]any)
	if err := json.Unmarshal(data, &raw); err == nil {
		return raw, nil
	}
	raw = make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("unable to parse config file (tried TOML, JSON, YAML)")
}

// Check loads path and returns every warning and validation error without
// failing on either.
func Check(path string) (ValidationErrors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	raw, err := decodeRaw(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	migrateRaw(raw)

	cfg := DefaultConfig()
	problems := applyRaw(cfg, raw)
	schemaWarns, err := ValidateSchema(raw)
	if err != nil {
		return nil, err
	}
	problems = mergeWarnings(problems, schemaWarns)

	if verr, ok := cfg.Validate().(ValidationErrors); ok {
		problems = append(problems, verr...)
	}
	return problems, nil
}

// Loader handles configuration loading, watching, and hot-reloading.
type Loader struct {
	path     string
	logger   *logging.Logger
	debounce time.Duration

	mu       sync.RWMutex
	config   *Config
	onChange []func(*Config)

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	errChan chan error
}

// NewLoader creates a new configuration loader. A nil logger discards.
func NewLoader(path string, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		path:     path,
		logger:   logger.WithComponent("config"),
		debounce: DefaultDebounce,
		errChan:  make(chan error, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetDebounce changes the settle time used by Watch.
func (l *Loader) SetDebounce(d time.Duration) {
	l.debounce = d
}

// Load reads and parses the configuration file.
func (l *Loader) Load() (*Config, error) {
	res, err := Load(l.path)
	if err != nil {
		return nil, err
	}
	l.report(res)

	l.mu.Lock()
	l.config = res.Config
	l.mu.Unlock()
	return res.Config, nil
}

func (l *Loader) report(res *Result) {
	if res.Migration != nil {
		l.logger.Info("migrated configuration",
			"path", l.path,
			"from", res.Migration.FromVersion,
			"to", res.Migration.ToVersion,
			"changes", len(res.Migration.Changes),
		)
	}
	for _, w := range res.Warnings {
		l.logger.Warn("configuration value ignored", "field", w.Field, "reason", w.Message)
	}
}

// Config returns the current configuration, or defaults before the first
// successful Load.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.config == nil {
		return DefaultConfig()
	}
	return l.config.Clone()
}

// Watch starts watching the configuration file for changes. When changes
// are detected the configuration is reloaded and registered callbacks are
// invoked. A reload that fails keeps the previous configuration.
func (l *Loader) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Editors replace files by rename, so watch the directory.
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		watcher.Close()
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	l.watcher = watcher

	go l.watchLoop()
	return nil
}

func (l *Loader) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-l.ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(l.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(l.debounce, l.reload)

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.sendErr(err)
		}
	}
}

func (l *Loader) reload() {
	if l.ctx.Err() != nil {
		return
	}

	res, err := Load(l.path)
	if err != nil {
		l.logger.Warn("configuration reload failed, keeping previous", "path", l.path, "error", err)
		l.sendErr(fmt.Errorf("reload config: %w", err))
		return
	}
	l.report(res)

	l.mu.Lock()
	l.config = res.Config
	callbacks := append([]func(*Config){}, l.onChange...)
	l.mu.Unlock()

	l.logger.Info("configuration reloaded", "path", l.path)
	for _, cb := range callbacks {
		cb(res.Config.Clone())
	}
}

func (l *Loader) sendErr(err error) {
	select {
	case l.errChan <- err:
	default:
	}
}

// OnChange registers a callback to be invoked when the configuration changes.
func (l *Loader) OnChange(cb func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, cb)
}

// Errors returns a channel for receiving errors that occur during watching.
func (l *Loader) Errors() <-chan error {
	return l.errChan
}

// Close stops the watcher and releases resources.
func (l *Loader) Close() error {
	l.cancel()
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}

// LoadOrCreate loads the configuration at path, writing a default file first
// if none exists. It reports whether the file was created.
func LoadOrCreate(path string) (*Result, bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(DefaultConfig(), path); err != nil {
			return nil, false, fmt.Errorf("create default config: %w", err)
		}
		res, err := Load(path)
		return res, true, err
	}
	res, err := Load(path)
	return res, false, err
}
