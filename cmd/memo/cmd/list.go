package cmd

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-memo/memo/internal/output"
)

func newListCmd() *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recently stored memories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := output.New(cmd.OutOrStdout())

			engine, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer engine.Close()

			records, err := engine.List(ctx, "", limit)
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			if len(records) == 0 {
				out.Status("", "no memories stored yet")
				return nil
			}

			for _, r := range records {
				created := time.UnixMilli(r.CreatedAt).Format(time.RFC3339)
				out.Statusf("📝", "%s  %s  %s", r.ID, created, truncate(r.Content, 80))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records (-1 for all)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
