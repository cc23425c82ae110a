package watch

import (
	"context"
	"log/slog"

	"github.com/go-memo/memo/internal/importer"
	"github.com/go-memo/memo/internal/store"
)

// MarkdownImporter is the subset of *importer.Importer that RunImport
// needs, so tests can substitute a fake.
type MarkdownImporter interface {
	ImportMarkdown(ctx context.Context, path, containerTag string, opts importer.ChunkOptions) (importer.MarkdownResult, error)
	ForgetMarkdown(ctx context.Context, containerTag, path string) (store.ReplaceResult, error)
}

// RunImport starts w watching path and, for every settled batch of
// events, re-imports each changed path (or forgets it, if it was
// deleted) into containerTag. It blocks until ctx is cancelled.
func RunImport(ctx context.Context, w *Watcher, path, containerTag string, opts importer.ChunkOptions, imp MarkdownImporter) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case batch, ok := <-w.Events():
				if !ok {
					return
				}
				reimportBatch(ctx, batch, containerTag, opts, imp)
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				slog.Warn("watch error", slog.String("error", err.Error()))
			}
		}
	}()

	err := w.Start(ctx, path)
	<-done
	return err
}

func reimportBatch(ctx context.Context, batch []FileEvent, containerTag string, opts importer.ChunkOptions, imp MarkdownImporter) {
	for _, event := range batch {
		var err error
		switch event.Operation {
		case OpDelete:
			_, err = imp.ForgetMarkdown(ctx, containerTag, event.Path)
		default:
			_, err = imp.ImportMarkdown(ctx, event.Path, containerTag, opts)
		}
		if err != nil {
			slog.Warn("re-import failed",
				slog.String("path", event.Path),
				slog.String("operation", event.Operation.String()),
				slog.String("error", err.Error()))
		}
	}
}
