package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/go-memo/memo/internal/output"
	"github.com/go-memo/memo/internal/tui"
	"github.com/go-memo/memo/pkg/memo"
)

func newStatusCmd() *cobra.Command {
	var interactive bool
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the embedder configuration and stored memory counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			engine, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer engine.Close()

			status, err := engine.Status(ctx)
			if err != nil {
				return err
			}

			if interactive {
				return tui.Run(toSnapshot(status))
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}

			printStatus(output.New(cmd.OutOrStdout()), status)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Open the interactive status dashboard")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func printStatus(out *output.Writer, status memo.Status) {
	out.Statusf("🧠", "embedder: %s / %s (%d dims)", status.EmbeddingProvider, status.EmbeddingModel, status.EmbeddingDimensions)
	out.Statusf("💾", "database: %s", status.DBPath)
	out.Statusf("📐", "similarity threshold: %.2f   min vector similarity: %.2f", status.SimilarityThreshold, status.MinVectorSimilarity)
	if status.DeduplicationEnabled {
		out.Status("🧹", "deduplication: enabled")
	} else {
		out.Status("🧹", "deduplication: disabled")
	}
	if len(status.CountsByContainer) == 0 {
		out.Status("", "no memories stored yet")
		return
	}
	for _, c := range status.CountsByContainer {
		out.Statusf("📦", "%s: %d", c.ContainerTag, c.Count)
	}
}

func toSnapshot(status memo.Status) tui.Snapshot {
	containers := make([]tui.ContainerCount, 0, len(status.CountsByContainer))
	for _, c := range status.CountsByContainer {
		containers = append(containers, tui.ContainerCount{ContainerTag: c.ContainerTag, Count: c.Count})
	}
	return tui.Snapshot{
		EmbeddingProvider:    status.EmbeddingProvider,
		EmbeddingModel:       status.EmbeddingModel,
		EmbeddingDimensions:  status.EmbeddingDimensions,
		DBPath:               status.DBPath,
		SimilarityThreshold:  status.SimilarityThreshold,
		MinVectorSimilarity:  status.MinVectorSimilarity,
		DeduplicationEnabled: status.DeduplicationEnabled,
		Containers:           containers,
	}
}
