// Package cmd provides the CLI commands for memo.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/go-memo/memo/internal/config"
	"github.com/go-memo/memo/internal/logging"
	"github.com/go-memo/memo/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the memo CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memo",
		Short: "Local, per-project persistent memory for LLM agents",
		Long: `memo is a local, per-project memory store for LLM agents.

It combines dense-vector nearest-neighbor search with BM25 keyword
search, fused with Reciprocal Rank Fusion, over a single SQLite
database scoped to your project.`,
		Version:      version.Version,
		SilenceUsage: true,
	}

	cmd.SetVersionTemplate("memo version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to <storagePath>/logs/memo.log")
	cmd.PersistentFlags().String("container", "", "Override the default container scope (container:<slug>)")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newForgetCmd())
	cmd.AddCommand(newResetCmd())
	cmd.AddCommand(newReindexCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging wires debug-mode file logging when --debug is set. Without
// it, memo logs nothing but its own command errors to stderr.
func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cleanup, err := logging.SetupDefault(cfg.StoragePath)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// containerOverride reads the --container persistent flag, if set.
func containerOverride(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString("container")
	return v
}
