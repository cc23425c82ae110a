package cmd

import (
	"github.com/spf13/cobra"

	"github.com/go-memo/memo/internal/config"
	"github.com/go-memo/memo/internal/logging"
	"github.com/go-memo/memo/internal/mcpserver"
	"github.com/go-memo/memo/pkg/version"
)

func newServeCmd() *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server exposing memo's tools over stdio",
		Long: `Serve starts an MCP server exposing memo_add, memo_search, memo_list,
memo_forget, and memo_status as tools, for use by an MCP-speaking agent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// The stdio transport reserves stdout exclusively for
			// JSON-RPC; route all logging to file instead.
			if cfg, err := config.Load(); err == nil {
				if cleanup, err := logging.SetupMCPMode(cfg.StoragePath); err == nil {
					defer cleanup()
				}
			}

			engine, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer engine.Close()

			srv := mcpserver.New(engine, version.Version)
			return srv.Serve(ctx, transport)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "MCP transport: stdio")

	return cmd
}
