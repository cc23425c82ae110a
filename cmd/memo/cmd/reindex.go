package cmd

import (
	"github.com/spf13/cobra"

	"github.com/go-memo/memo/internal/output"
)

func newReindexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the full-text index from stored memories",
		Long:  `Reindex rebuilds the BM25 full-text index from the memories table. Idempotent: a second run in a row reports nothing added or removed.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := output.New(cmd.OutOrStdout())

			engine, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer engine.Close()

			result, err := engine.Reindex(ctx)
			if err != nil {
				return err
			}

			out.Successf("reindexed: %d added, %d removed", result.Added, result.Removed)
			return nil
		},
	}

	return cmd
}
