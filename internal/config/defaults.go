package config

import (
	"os"
	"path/filepath"
	"runtime"

	"kanakey/internal/logging"
)

// PlatformDataDir returns the platform-specific data directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/kanakey/
//   - Linux:   ~/.local/share/kanakey/
//   - Windows: %APPDATA%\kanakey\
//
// KANAKEY_DATA_DIR overrides all of them.
func PlatformDataDir() string {
	if dir := os.Getenv("KANAKEY_DATA_DIR"); dir != "" {
		return dir
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", "kanakey")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "kanakey")
		}
		return filepath.Join(homeDir(), "AppData", "Roaming", "kanakey")
	default:
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			return filepath.Join(xdgData, "kanakey")
		}
		return filepath.Join(homeDir(), ".local", "share", "kanakey")
	}
}

// PlatformConfigDir returns the platform-specific config directory.
func PlatformConfigDir() string {
	switch runtime.GOOS {
	case "darwin", "windows":
		return PlatformDataDir()
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, "kanakey")
		}
		return filepath.Join(homeDir(), ".config", "kanakey")
	}
}

// PlatformLogDir returns the platform-specific log directory.
func PlatformLogDir() string {
	return filepath.Dir(logging.DefaultLogPath())
}

func homeDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return home
}

// SupportedConfigFormats returns the list of supported config file formats.
func SupportedConfigFormats() []string {
	return []string{
		"toml",
		"yaml",
		"yml",
		"json",
	}
}

// FindConfigFile searches the config directory for config.<ext> and returns
// the first existing path, or "" when there is none.
func FindConfigFile() string {
	dir := PlatformConfigDir()
	for _, ext := range SupportedConfigFormats() {
		path := filepath.Join(dir, "config."+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
