package logging

import (
	"log/slog"
)

// SetupMCPMode initializes logging for MCP server mode (`memo serve`).
// This is critical for MCP protocol compliance: the stdio transport uses
// stdout EXCLUSIVELY for JSON-RPC, so this mode logs only to file, never
// to stdout/stderr, and always at debug level for full diagnostics.
func SetupMCPMode(storagePath string) (func(), error) {
	cfg := Config{
		Level:         "debug", // Always debug in MCP mode for full diagnostics
		FilePath:      DefaultLogPath(storagePath),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false, // CRITICAL: Never write to stderr in MCP mode
	}

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)

	// Log that MCP mode logging is initialized
	slog.Info("MCP mode logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level),
		slog.Bool("stderr_disabled", true))

	return cleanup, nil
}

// SetupMCPModeWithLevel initializes MCP-safe logging with a specific level.
func SetupMCPModeWithLevel(storagePath, level string) (func(), error) {
	cfg := Config{
		Level:         level,
		FilePath:      DefaultLogPath(storagePath),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false, // CRITICAL: Never write to stderr in MCP mode
	}

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	return cleanup, nil
}
