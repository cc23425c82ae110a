package memo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-memo/memo/internal/config"
	"github.com/go-memo/memo/internal/dedup"
	"github.com/go-memo/memo/internal/embed"
	"github.com/go-memo/memo/internal/importer"
	"github.com/go-memo/memo/internal/memoerrors"
	"github.com/go-memo/memo/internal/search"
	"github.com/go-memo/memo/internal/store"
	"github.com/go-memo/memo/internal/tags"
)

// Engine is the composed memory store: one embedding pipeline, created by
// Open and owned by this Engine, backing a store, a deduper, a search engine, and an importer,
// all scoped to one project's database.
type Engine struct {
	cfg          config.Config
	store        *store.Store
	pipeline     *embed.Pipeline
	deduper      *dedup.Deduper
	search       *search.Engine
	importer     *importer.Importer
	provenance   tags.Provenance
	containerTag string
	dbPath       string
}

// Options configures Open, letting programmatic callers override the
// loaded configuration's scope without editing the user's config file.
type Options struct {
	// WorkDir is the project root or a directory beneath it. Defaults to
	// the process working directory.
	WorkDir string

	// Container names an explicit `container:<slug>` scope in place of
	// the worktree-derived `project:<hash>` tag.
	Container string

	// Config overrides the loaded configuration entirely. The zero value
	// selects config.Load().
	Config *config.Config
}

// Open resolves the project's container tag and database path, loads
// configuration, constructs the embedding pipeline and warms it up (so a
// dimension mismatch or an unreachable backend fails here rather than on
// the first Add/Search call), and wires the store, deduper, search
// engine, and importer together.
func Open(ctx context.Context, opts Options) (*Engine, error) {
	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		workDir = wd
	}

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = &loaded
	}

	containerTag := tags.ProjectTag(workDir)
	if opts.Container != "" {
		named, err := tags.ContainerTag(opts.Container)
		if err != nil {
			return nil, memoerrors.Wrap(memoerrors.KindInvalidInput, err)
		}
		containerTag = named
	}

	root := tags.ProjectRoot(workDir)
	dbPath := filepath.Join(root, ".memo", "memo.db")

	provenance := tags.DetectProvenance(workDir)

	provider := embed.ParseProvider(cfg.EmbeddingProvider)
	loader := embed.NewLoader(provider, cfg.EmbeddingModel, cfg.EmbeddingDimensions)

	s, err := store.Open(store.Options{
		DBPath:           dbPath,
		Dimensions:       cfg.EmbeddingDimensions,
		CustomSqlitePath: cfg.CustomSqlitePath,
	})
	if err != nil {
		return nil, err
	}

	pipeline := embed.NewPipeline(loader, s, cfg.EmbeddingModel)
	if _, err := pipeline.WarmUp(ctx); err != nil {
		_ = s.Close()
		return nil, memoerrors.Wrap(memoerrors.KindEmbeddingFailure, err)
	}

	deduper := dedup.New(s, dedup.Options{
		Enabled:   cfg.DeduplicationEnabled,
		Threshold: cfg.DeduplicationSimilarityThreshold,
	})

	return &Engine{
		cfg:          *cfg,
		store:        s,
		pipeline:     pipeline,
		deduper:      deduper,
		search:       search.New(s, pipeline),
		importer:     importer.New(s, pipeline),
		provenance:   provenance,
		containerTag: containerTag,
		dbPath:       dbPath,
	}, nil
}

// Close releases the embedding backend and the underlying database
// connection. Safe to call once, at process shutdown.
func (e *Engine) Close() error {
	pipelineErr := e.pipeline.Close()
	storeErr := e.store.Close()
	if pipelineErr != nil {
		return pipelineErr
	}
	return storeErr
}

// ContainerTag is the scope every Add/Search/List/Forget call on this
// Engine is restricted to, unless overridden per call.
func (e *Engine) ContainerTag() string {
	return e.containerTag
}

// DBPath is the on-disk database file this Engine opened.
func (e *Engine) DBPath() string {
	return e.dbPath
}

// resolveContainer returns containerTag if non-empty, otherwise the
// Engine's default scope.
func (e *Engine) resolveContainer(containerTag string) string {
	if containerTag != "" {
		return containerTag
	}
	return e.containerTag
}
