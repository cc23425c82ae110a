package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/go-memo/memo/internal/importer"
	"github.com/go-memo/memo/internal/output"
	"github.com/go-memo/memo/internal/store"
	"github.com/go-memo/memo/internal/watch"
	"github.com/go-memo/memo/pkg/memo"
)

type importOptions struct {
	repoMap       string
	chunkTokens   int
	overlapTokens int
	watchMode     bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Import markdown notes or a repo map into the project's memory",
		Long: `Import chunks a markdown file (or every markdown file under a
directory) into memories, or, with --repo-map, imports a repo-map JSON
file describing a codebase's structure.

Re-importing the same path replaces what an earlier import of that
path inserted, so edits are reflected rather than duplicated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.repoMap, "repo-map", "", "Import this repo-map JSON file instead of markdown (the <path> argument is then not used)")
	cmd.Flags().IntVar(&opts.chunkTokens, "chunk-tokens", 0, "Target chunk size in tokens (0 uses the default)")
	cmd.Flags().IntVar(&opts.overlapTokens, "overlap-tokens", 0, "Chunk overlap in tokens (0 uses the default)")
	cmd.Flags().BoolVarP(&opts.watchMode, "watch", "w", false, "Watch path and re-import on change (markdown only; runs until interrupted)")

	return cmd
}

func runImport(cmd *cobra.Command, path string, opts importOptions) error {
	ctx := cmd.Context()
	out := output.New(cmd.OutOrStdout())

	engine, err := openEngine(ctx, cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	containerTag := containerOverride(cmd)

	if opts.repoMap != "" {
		result, err := engine.ImportRepoMap(ctx, opts.repoMap, containerTag)
		if err != nil {
			return err
		}
		out.Successf("imported repo map: %d inserted, %d replaced", result.Inserted, result.Deleted)
		return nil
	}

	chunkOpts := importer.ChunkOptions{ChunkTokens: opts.chunkTokens, OverlapTokens: opts.overlapTokens}

	result, err := engine.ImportMarkdown(ctx, path, containerTag, chunkOpts)
	if err != nil {
		return err
	}
	out.Successf("imported %s: %d files, %d chunks (%d inserted, %d replaced)",
		path, result.FilesImported, result.ChunksEmitted, result.Inserted, result.Deleted)

	if !opts.watchMode {
		return nil
	}

	watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	w, err := watch.New(watch.Options{})
	if err != nil {
		return err
	}

	out.Status("👀", "watching "+path+" for changes (ctrl-c to stop)")
	return watch.RunImport(watchCtx, w, path, containerTag, chunkOpts, markdownImporterAdapter{engine})
}

// markdownImporterAdapter satisfies watch.MarkdownImporter over
// *memo.Engine, reordering ForgetMarkdown's arguments: the Engine takes
// (path, containerTag), the watcher interface takes (containerTag, path).
type markdownImporterAdapter struct {
	engine *memo.Engine
}

func (a markdownImporterAdapter) ImportMarkdown(ctx context.Context, path, containerTag string, opts importer.ChunkOptions) (importer.MarkdownResult, error) {
	return a.engine.ImportMarkdown(ctx, path, containerTag, opts)
}

func (a markdownImporterAdapter) ForgetMarkdown(ctx context.Context, containerTag, path string) (store.ReplaceResult, error) {
	return a.engine.ForgetMarkdown(ctx, path, containerTag)
}
