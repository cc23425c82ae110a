package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed template.jsonc
var templateJSONC string

// UserConfigDir returns <XDG_CONFIG_HOME>/memo, falling back to
// ~/.config/memo when XDG_CONFIG_HOME is unset, mirroring the teacher's
// GetUserConfigDir XDG lookup.
func UserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "memo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "memo")
	}
	return filepath.Join(home, ".config", "memo")
}

// ConfigFilePath is the path Load writes the first-run template to and
// reads config.jsonc back from.
func ConfigFilePath() string {
	return filepath.Join(UserConfigDir(), "config.jsonc")
}

// writeTemplate writes the commented-out template to config.jsonc,
// replacing any existing file; Load calls it only when neither
// config.jsonc nor config.json exists.
func writeTemplate() error {
	dir := UserConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", dir, err)
	}
	return os.WriteFile(ConfigFilePath(), []byte(templateJSONC), 0o644)
}
