package memo

import (
	"context"
	"time"

	"github.com/go-memo/memo/internal/dedup"
	"github.com/go-memo/memo/internal/importer"
	"github.com/go-memo/memo/internal/memoerrors"
	"github.com/go-memo/memo/internal/search"
	"github.com/go-memo/memo/internal/store"
)

// DuplicateVerdict classifies the outcome of the duplicate check Add runs
// before inserting, mirroring internal/dedup's three-way classification
// without exposing that package's type in this façade's public surface.
type DuplicateVerdict string

const (
	NotDuplicate   DuplicateVerdict = "not_duplicate"
	ExactDuplicate DuplicateVerdict = "exact_duplicate"
	NearDuplicate  DuplicateVerdict = "near_duplicate"
)

func fromDedupVerdict(v dedup.Verdict) DuplicateVerdict {
	switch v {
	case dedup.ExactDuplicate:
		return ExactDuplicate
	case dedup.NearDuplicate:
		return NearDuplicate
	default:
		return NotDuplicate
	}
}

// AddOptions configures one Add call.
type AddOptions struct {
	// Container overrides the Engine's default container tag for this
	// call only.
	Container string
}

// AddResult reports what Add actually did: either a new record's id, or a
// skipped insert naming the duplicate it matched.
type AddResult struct {
	ID         string
	Skipped    bool
	Verdict    DuplicateVerdict
	ExistingID string
	Similarity float32
}

// Add embeds text, runs the duplicate-detection protocol against the
// target container, and inserts a new record unless the protocol reports
// an exact or near duplicate.
func (e *Engine) Add(ctx context.Context, text string, opts AddOptions) (AddResult, error) {
	if text == "" {
		return AddResult{}, memoerrors.InvalidInput("text must not be empty")
	}
	containerTag := e.resolveContainer(opts.Container)

	vector, err := e.pipeline.Embed(ctx, text)
	if err != nil {
		return AddResult{}, err
	}

	verdict, err := e.deduper.Check(ctx, dedup.Candidate{
		Content:      text,
		Vector:       vector,
		ContainerTag: containerTag,
	})
	if err != nil {
		return AddResult{}, err
	}
	if verdict.Verdict != dedup.NotDuplicate {
		return AddResult{
			Skipped:    true,
			Verdict:    fromDedupVerdict(verdict.Verdict),
			ExistingID: verdict.ExistingID,
			Similarity: verdict.Similarity,
		}, nil
	}

	id, err := store.NewID()
	if err != nil {
		return AddResult{}, err
	}
	now := time.Now().UnixMilli()

	record := &store.Record{
		ID:           id,
		Content:      text,
		Vector:       vector,
		ContainerTag: containerTag,
		CreatedAt:    now,
		UpdatedAt:    now,
		UserName:     e.provenance.UserName,
		UserEmail:    e.provenance.UserEmail,
		ProjectPath:  e.provenance.ProjectPath,
		ProjectName:  e.provenance.ProjectName,
		GitRepoURL:   e.provenance.GitRepoURL,
	}
	// An id collision is retried with a fresh id, up to 3 attempts in all.
	err = e.store.Insert(ctx, record)
	for attempt := 1; attempt < 3 && memoerrors.Is(err, memoerrors.KindIntegrityViolation); attempt++ {
		if record.ID, err = store.NewID(); err != nil {
			return AddResult{}, err
		}
		err = e.store.Insert(ctx, record)
	}
	if err != nil {
		return AddResult{}, err
	}

	return AddResult{ID: record.ID, Verdict: NotDuplicate}, nil
}

// SearchOptions configures one Search call; the zero value searches the
// Engine's default container, and a zero Limit, Threshold or
// MinVectorSimilarity takes the configured maxMemories,
// similarityThreshold or minVectorSimilarity.
type SearchOptions struct {
	Container           string
	Limit               int
	Threshold           float32
	MinVectorSimilarity float32
	SkipVector          bool
	SkipFullText        bool
}

// Search runs the hybrid retrieval algorithm (vector KNN gate, BM25, RRF
// fusion) scoped to containerTag and returns the fused, thresholded,
// limit-trimmed result list.
func (e *Engine) Search(ctx context.Context, query string, opts SearchOptions) ([]search.Result, error) {
	if opts.SkipVector && opts.SkipFullText {
		return nil, memoerrors.InvalidInput("cannot skip both vector and full-text search")
	}
	if query == "" {
		return nil, memoerrors.InvalidInput("query must not be empty")
	}

	limit := opts.Limit
	if limit == 0 {
		limit = e.cfg.MaxMemories
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = e.cfg.SimilarityThreshold
	}
	minVecSim := opts.MinVectorSimilarity
	if minVecSim == 0 {
		minVecSim = e.cfg.MinVectorSimilarity
	}

	return e.search.Search(ctx, query, search.Options{
		ContainerTag:        e.resolveContainer(opts.Container),
		Limit:               limit,
		Threshold:           threshold,
		MinVectorSimilarity: minVecSim,
		SkipVector:          opts.SkipVector,
		SkipFullText:        opts.SkipFullText,
	})
}

// List returns the limit most recent records in containerTag (or the
// Engine's default container, if containerTag is empty), descending by
// creation time. A negative limit returns every record.
func (e *Engine) List(ctx context.Context, containerTag string, limit int) ([]*store.Record, error) {
	return e.store.List(ctx, e.resolveContainer(containerTag), limit)
}

// ForgetOptions configures one Forget call.
type ForgetOptions struct {
	// Container, when set, requires the record to belong to this
	// container; a record belonging to a different container is refused
	// rather than deleted.
	Container string
}

// Forget deletes the record with the given id, refusing the operation if
// opts.Container is set and the record belongs to a different container.
func (e *Engine) Forget(ctx context.Context, id string, opts ForgetOptions) error {
	if opts.Container != "" {
		actual, found, err := e.store.GetContainerTag(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return memoerrors.NotFound("no record with id " + id)
		}
		if actual != opts.Container {
			return memoerrors.WrongContainer("record " + id + " belongs to a different container")
		}
	}

	found, err := e.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return memoerrors.NotFound("no record with id " + id)
	}
	return nil
}

// Reset drops the project's database file entirely.
func (e *Engine) Reset() error {
	return e.store.Reset()
}

// Reindex rebuilds the full-text index from the memories table, reporting
// rows added and removed. Idempotent: a second call in a row reports
// {0, 0}.
func (e *Engine) Reindex(ctx context.Context) (store.ReindexResult, error) {
	return e.store.ReindexFulltext(ctx)
}

// ImportMarkdown imports a single markdown file or, for a directory, every
// markdown file beneath it, into containerTag (or the Engine's default
// container, if containerTag is empty).
func (e *Engine) ImportMarkdown(ctx context.Context, path, containerTag string, opts importer.ChunkOptions) (importer.MarkdownResult, error) {
	return e.importer.ImportMarkdown(ctx, path, e.resolveContainer(containerTag), opts)
}

// ForgetMarkdown removes every record previously imported from path,
// without requiring path to still exist on disk.
func (e *Engine) ForgetMarkdown(ctx context.Context, path, containerTag string) (store.ReplaceResult, error) {
	return e.importer.ForgetMarkdown(ctx, e.resolveContainer(containerTag), path)
}

// ImportRepoMap imports a repo-map JSON file into containerTag (or the
// Engine's default container, if containerTag is empty).
func (e *Engine) ImportRepoMap(ctx context.Context, path, containerTag string) (store.ReplaceResult, error) {
	return e.importer.ImportRepoMap(ctx, path, e.resolveContainer(containerTag))
}

// Status summarises the engine's configuration and the store's current
// contents, for the `memo status` command and the interactive dashboard.
type Status struct {
	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingDimensions int
	DBPath              string
	SimilarityThreshold float32
	MinVectorSimilarity float32
	DeduplicationEnabled bool
	CountsByContainer   []store.ContainerCount
}

// Status gathers the engine's current configuration and per-container
// record counts.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	counts, err := e.store.CountByContainer(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		EmbeddingProvider:    e.cfg.EmbeddingProvider,
		EmbeddingModel:       e.pipeline.ModelName(),
		EmbeddingDimensions:  e.pipeline.Dimensions(),
		DBPath:               e.dbPath,
		SimilarityThreshold:  e.cfg.SimilarityThreshold,
		MinVectorSimilarity:  e.cfg.MinVectorSimilarity,
		DeduplicationEnabled: e.cfg.DeduplicationEnabled,
		CountsByContainer:    counts,
	}, nil
}
