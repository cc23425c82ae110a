package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-memo/memo/internal/output"
	"github.com/go-memo/memo/pkg/memo"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Store a new memory",
		Long: `Store a new memory in the project's container.

Text is embedded and checked against existing memories in the same
container for exact and near duplicates before being inserted;
duplicates are reported rather than stored twice.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			out := output.New(cmd.OutOrStdout())

			engine, err := openEngine(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer engine.Close()

			result, err := engine.Add(cmd.Context(), text, memo.AddOptions{})
			if err != nil {
				return err
			}

			if result.Skipped {
				out.Warningf("skipped: %s of %s (similarity %.3f)", result.Verdict, result.ExistingID, result.Similarity)
				return nil
			}

			out.Successf("stored %s", result.ID)
			return nil
		},
	}

	return cmd
}
