package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// MigrationResult describes an in-memory upgrade of a configuration
// document.
type MigrationResult struct {
	FromVersion int
	ToVersion   int
	Changes     []string
}

// legacyKeys maps the flat preference names of version 1 documents to their
// stable keys.
var legacyKeys = map[string]string{
	"type_half_space":       "input.half_width_space",
	"type_comma_and_period": "input.comma_period",
	"type_back_slash":       "input.backslash",
	"live_conversion":       "conversion.live",
	"debug_window":          "journal.enabled",
}

// migrateRaw upgrades a decoded document in place. It returns nil when the
// document is already current.
func migrateRaw(raw map[string]any) *MigrationResult {
	from := 1
	if v, ok := raw["version"]; ok {
		if n, ok := toInt(v); ok {
			from = n
		}
	} else if !hasLegacyKeys(raw) {
		// An unversioned document in the current layout.
		return nil
	}
	if from >= Version {
		return nil
	}

	result := &MigrationResult{FromVersion: from, ToVersion: Version}

	names := make([]string, 0, len(legacyKeys))
	for k := range legacyKeys {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, old := range names {
		v, ok := raw[old]
		if !ok {
			continue
		}
		delete(raw, old)
		key := legacyKeys[old]
		if _, exists := lookup(raw, key); exists {
			result.Changes = append(result.Changes, fmt.Sprintf("dropped %s, %s is already set", old, key))
			continue
		}
		setRaw(raw, key, v)
		result.Changes = append(result.Changes, fmt.Sprintf("moved %s to %s", old, key))
	}

	raw["version"] = Version
	return result
}

func hasLegacyKeys(raw map[string]any) bool {
	for k := range legacyKeys {
		if _, ok := raw[k]; ok {
			return true
		}
	}
	return false
}

func setRaw(raw map[string]any, key string, v any) {
	section, name := splitKey(key)
	m, ok := raw[section].(map[string]any)
	if !ok {
		m = make(map[string]any)
		raw[section] = m
	}
	m[name] = v
}

func splitKey(key string) (string, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:]
		}
	}
	return "", key
}

// SaveConfig writes cfg to path in the format its extension names. Unknown
// extensions get TOML.
func SaveConfig(cfg *Config, path string) error {
	var data []byte
	var err error

	switch filepath.Ext(path) {
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = encodeToTOML(cfg)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func encodeToTOML(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# kanakey configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
