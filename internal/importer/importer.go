package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-memo/memo/internal/memoerrors"
	"github.com/go-memo/memo/internal/store"
)

// embedWorkers bounds how many chunks within one import are embedded
// concurrently.
const embedWorkers = 4

var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdx":      true,
}

// Importer turns markdown files/trees and repo-map JSON files into store
// records, embedding each and handing the full record set for a source key
// to Store.ReplaceBySource.
type Importer struct {
	store    *store.Store
	embedder Embedder
}

// New creates an Importer writing to s and embedding with embedder.
func New(s *store.Store, embedder Embedder) *Importer {
	return &Importer{store: s, embedder: embedder}
}

// MarkdownResult aggregates the ReplaceBySource outcome across every
// source key touched by one markdown import.
type MarkdownResult struct {
	FilesImported int
	ChunksEmitted int
	store.ReplaceResult
}

// ImportMarkdown imports a single markdown file or, for a directory,
// every markdown file beneath it (walked in lexical order, symlinks
// skipped), into containerTag.
func (imp *Importer) ImportMarkdown(ctx context.Context, path, containerTag string, opts ChunkOptions) (MarkdownResult, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return MarkdownResult{}, memoerrors.Wrap(memoerrors.KindInvalidInput, err)
	}

	var files []string
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return MarkdownResult{}, memoerrors.InvalidInput("symlinks are not supported as direct import input: " + path)
	case info.IsDir():
		files, err = walkMarkdownFiles(path)
		if err != nil {
			return MarkdownResult{}, err
		}
	case info.Mode().IsRegular():
		if !markdownExtensions[strings.ToLower(filepath.Ext(path))] {
			return MarkdownResult{}, memoerrors.InvalidInput("unsupported file extension for markdown import: " + path)
		}
		files = []string{path}
	default:
		return MarkdownResult{}, memoerrors.InvalidInput("unsupported path kind for markdown import: " + path)
	}

	var result MarkdownResult
	for _, f := range files {
		perFile, err := imp.importMarkdownFile(ctx, f, containerTag, opts)
		if err != nil {
			return result, err
		}
		result.FilesImported++
		result.ChunksEmitted += len(perFile.chunks)
		result.Deleted += perFile.replaced.Deleted
		result.Inserted += perFile.replaced.Inserted
	}
	return result, nil
}

// walkMarkdownFiles collects markdown files under root in lexical order,
// skipping symlinks (files and directories alike).
func walkMarkdownFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil // skip symlinked files and directories without descending
		}
		if d.IsDir() {
			return nil
		}
		if markdownExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

type importedFile struct {
	chunks   []Chunk
	replaced store.ReplaceResult
}

func (imp *Importer) importMarkdownFile(ctx context.Context, path, containerTag string, opts ChunkOptions) (importedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return importedFile{}, memoerrors.Wrap(memoerrors.KindInvalidInput, err)
	}

	sourceKey, err := canonicalSourceKey(path)
	if err != nil {
		return importedFile{}, err
	}

	chunks := ChunkMarkdown(string(content), opts)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := imp.embedConcurrently(ctx, texts)
	if err != nil {
		return importedFile{}, fmt.Errorf("embed chunks for %s: %w", path, err)
	}

	records := make([]*store.Record, len(chunks))
	now := nowMillis()
	for i, c := range chunks {
		id, err := store.NewID()
		if err != nil {
			return importedFile{}, err
		}
		metadata, err := json.Marshal(markdownMetadata{
			SourcePath: path,
			SourceKey:  sourceKey,
			StartLine:  c.StartLine,
			EndLine:    c.EndLine,
			ChunkIndex: i,
			ChunkCount: len(chunks),
			ChunkHash:  c.Hash,
		})
		if err != nil {
			return importedFile{}, fmt.Errorf("encode chunk metadata: %w", err)
		}
		records[i] = &store.Record{
			ID:           id,
			Content:      c.Text,
			Vector:       vectors[i],
			ContainerTag: containerTag,
			SourceKey:    sourceKey,
			Type:         recordType,
			Metadata:     string(metadata),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	replaced, err := imp.store.ReplaceBySource(ctx, containerTag, sourceKey, records)
	if err != nil {
		return importedFile{}, err
	}
	return importedFile{chunks: chunks, replaced: replaced}, nil
}

// ForgetMarkdown removes every record previously imported from path,
// without requiring path to still exist on disk — used when a watched
// file is deleted rather than changed.
func (imp *Importer) ForgetMarkdown(ctx context.Context, containerTag, path string) (store.ReplaceResult, error) {
	sourceKey, err := bestEffortSourceKey(path)
	if err != nil {
		return store.ReplaceResult{}, err
	}
	return imp.store.ReplaceBySource(ctx, containerTag, sourceKey, nil)
}

// bestEffortSourceKey mirrors canonicalPath's real-path resolution but
// tolerates path itself being gone: only the parent directory needs to
// exist (or, failing that, its own literal form is used unresolved).
func bestEffortSourceKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	dir := filepath.Dir(abs)
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		realDir = dir
	}
	return filepath.ToSlash(filepath.Join(realDir, filepath.Base(abs))), nil
}

// ImportRepoMap imports a JSON repo-map file: one record per entry, no
// chunking, all entries sharing the file's source key.
func (imp *Importer) ImportRepoMap(ctx context.Context, path, containerTag string) (store.ReplaceResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.ReplaceResult{}, memoerrors.Wrap(memoerrors.KindInvalidInput, err)
	}
	entries, err := parseRepoMap(data)
	if err != nil {
		return store.ReplaceResult{}, err
	}

	realPath, err := canonicalPath(path)
	if err != nil {
		return store.ReplaceResult{}, err
	}
	sourceKey := "repo-map:" + realPath

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = synthesizeContent(e)
	}
	vectors, err := imp.embedConcurrently(ctx, texts)
	if err != nil {
		return store.ReplaceResult{}, fmt.Errorf("embed repo-map entries for %s: %w", path, err)
	}

	now := nowMillis()
	records := make([]*store.Record, len(entries))
	for i, e := range entries {
		id, err := store.NewID()
		if err != nil {
			return store.ReplaceResult{}, err
		}
		metadata, err := json.Marshal(repoMapMetadata{
			SourcePath: e.Path,
			SourceKey:  sourceKey,
			Language:   e.Language,
			Symbols:    e.Symbols,
			ImportType: "repo-map",
		})
		if err != nil {
			return store.ReplaceResult{}, fmt.Errorf("encode repo-map metadata: %w", err)
		}
		records[i] = &store.Record{
			ID:           id,
			Content:      texts[i],
			Vector:       vectors[i],
			ContainerTag: containerTag,
			SourceKey:    sourceKey,
			Type:         recordType,
			Metadata:     string(metadata),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	return imp.store.ReplaceBySource(ctx, containerTag, sourceKey, records)
}

// embedConcurrently embeds each text, bounding concurrency to
// embedWorkers so independent chunks within one import overlap model
// inference without unbounded fan-out.
func (imp *Importer) embedConcurrently(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedWorkers)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			vec, err := imp.embedder.Embed(gctx, text)
			if err != nil {
				return err
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// canonicalPath resolves path to its real, symlink-free, forward-slash
// form, used as the stable basis for source keys.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve real path: %w", err)
	}
	return filepath.ToSlash(real), nil
}

func canonicalSourceKey(path string) (string, error) {
	return canonicalPath(path)
}

// nowMillis is overridable in tests that need deterministic timestamps.
var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}
