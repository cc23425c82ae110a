package cmd

import (
	"github.com/spf13/cobra"

	"github.com/go-memo/memo/internal/output"
)

func newResetCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the project's entire memory database",
		Long:  `Reset drops the project's database file entirely, irreversibly. Pass --yes to confirm.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())

			if !confirm {
				out.Warning("this deletes the project's entire memory database; pass --yes to confirm")
				return nil
			}

			engine, err := openEngine(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.Reset(); err != nil {
				return err
			}

			out.Success("memory database reset")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the reset")

	return cmd
}
