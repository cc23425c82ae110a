package cmd

import (
	"github.com/spf13/cobra"

	"github.com/go-memo/memo/internal/output"
	"github.com/go-memo/memo/pkg/memo"
)

func newForgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forget <id>",
		Short: "Delete a memory by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.New(cmd.OutOrStdout())

			engine, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.Forget(ctx, args[0], memo.ForgetOptions{}); err != nil {
				return err
			}

			out.Successf("forgot %s", args[0])
			return nil
		},
	}

	return cmd
}
