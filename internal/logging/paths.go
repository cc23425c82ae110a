package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-memo/memo/internal/config"
)

// DefaultLogDir returns the log directory under the configured storage
// path: <storagePath>/logs.
func DefaultLogDir(storagePath string) string {
	return filepath.Join(storagePath, "logs")
}

// DefaultLogPath returns the default server log path under storagePath.
func DefaultLogPath(storagePath string) string {
	return filepath.Join(DefaultLogDir(storagePath), "memo.log")
}

// EnsureLogDir creates the log directory under storagePath if missing.
func EnsureLogDir(storagePath string) error {
	return os.MkdirAll(DefaultLogDir(storagePath), 0o755)
}

// FindLogFile attempts to find the log file for viewing.
// Priority: an explicit path, then the configured default.
func FindLogFile(explicit, storagePath string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	defaultPath := DefaultLogPath(storagePath)
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath, nil
	}

	return "", fmt.Errorf("no log file found. Run a command with --debug first.\nExpected at: %s", defaultPath)
}

// defaultStoragePath is a convenience for callers that haven't loaded a
// config.Config yet (e.g. early CLI bootstrapping).
func defaultStoragePath() string {
	return config.Defaults().StoragePath
}
