package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-memo/memo/internal/output"
	"github.com/go-memo/memo/internal/render"
	"github.com/go-memo/memo/pkg/memo"
)

type searchOptions struct {
	limit      int
	threshold  float32
	format     string // "text", "json"
	bm25Only   bool
	vectorOnly bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored memories",
		Long: `Search stored memories using hybrid retrieval.

Combines a vector KNN gate with BM25 keyword search, fused with
Reciprocal Rank Fusion, scoped to the project's container.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().Float32Var(&opts.threshold, "threshold", 0, "Minimum fused similarity (0 uses the configured default)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.bm25Only, "bm25-only", false, "Use keyword search only (skip vector search)")
	cmd.Flags().BoolVar(&opts.vectorOnly, "vector-only", false, "Use vector search only (skip BM25)")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	ctx := cmd.Context()
	out := output.New(cmd.OutOrStdout())

	engine, err := openEngine(ctx, cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.Search(ctx, query, memo.SearchOptions{
		Limit:        opts.limit,
		Threshold:    opts.threshold,
		SkipVector:   opts.bm25Only,
		SkipFullText: opts.vectorOnly,
	})
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	out.Raw(render.Results(query, results))
	return nil
}
