package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-memo/memo/internal/memoerrors"
	"github.com/go-memo/memo/internal/store"
)

// ErrNoSubsystemRequested is returned when both SkipVector and
// SkipFullText are set: at least one of the two candidate sources must
// run.
var ErrNoSubsystemRequested = errors.New("search: at least one of vector or full-text search must be requested")

// Engine runs the hybrid search algorithm against a store: a gated vector
// KNN pass, a container-scoped BM25 pass, Reciprocal Rank Fusion, and
// per-record score normalisation.
type Engine struct {
	store    *store.Store
	embedder Embedder
}

// New creates an Engine backed by s, using embedder to turn query text
// into query vectors.
func New(s *store.Store, embedder Embedder) *Engine {
	return &Engine{store: s, embedder: embedder}
}

// Search runs the six-stage hybrid algorithm for queryText and returns
// results ordered by descending similarity, thresholded and limited.
func (e *Engine) Search(ctx context.Context, queryText string, opts Options) ([]Result, error) {
	queryText = strings.TrimSpace(queryText)
	if opts.SkipVector && opts.SkipFullText {
		return nil, ErrNoSubsystemRequested
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	minVecSim := opts.MinVectorSimilarity
	if minVecSim <= 0 {
		minVecSim = DefaultMinVectorSimilarity
	}

	k := 4 * limit

	var vecCandidates []store.VectorCandidate
	if !opts.SkipVector && queryText != "" {
		gated, err := e.searchVector(ctx, queryText, k, minVecSim)
		if err != nil {
			return nil, err
		}
		vecCandidates = gated
	}

	var bm25Candidates []store.FullTextCandidate
	if !opts.SkipFullText && queryText != "" {
		candidates, err := e.store.SearchFullText(ctx, queryText, k, opts.ContainerTag)
		if err != nil {
			if memoerrors.Is(err, memoerrors.KindFullTextQueryError) {
				slog.Warn("full-text query rejected, falling back to vector-only",
					slog.String("error", err.Error()))
			} else {
				return nil, err
			}
		} else {
			bm25Candidates = candidates
		}
	}

	if len(vecCandidates) == 0 && len(bm25Candidates) == 0 {
		return nil, nil
	}

	// Stage 3: fuse.
	fused := fuse(vecCandidates, bm25Candidates)

	// Stage 4: fetch and container-scope-filter.
	ids := make([]string, 0, len(fused))
	for id := range fused {
		ids = append(ids, id)
	}
	records, err := e.store.GetByIDs(ctx, ids, opts.ContainerTag)
	if err != nil {
		return nil, fmt.Errorf("fetch fused candidates: %w", err)
	}

	// Stage 5: per-record normalisation.
	results := make([]Result, 0, len(records))
	for _, r := range records {
		entry := fused[r.ID]
		if entry == nil {
			continue // should not happen: every fetched id came from fused
		}
		results = append(results, Result{
			ID:             r.ID,
			Content:        r.Content,
			Similarity:     normalizeSimilarity(entry),
			CreatedAt:      r.CreatedAt,
			Type:           r.Type,
			Metadata:       r.Metadata,
			ContainerTag:   r.ContainerTag,
			InVectorList:   entry.inVector,
			InFullTextList: entry.inFullText,
		})
	}

	// Stage 6: order, threshold, trim.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ID < results[j].ID
	})

	filtered := results[:0]
	for _, r := range results {
		if r.Similarity >= threshold {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// searchVector runs Stage 1: KNN lookup, cosine-similarity conversion, and
// the min-similarity gate, re-ranking the survivors so RRF ranks start
// from 0 among the gated set rather than the raw KNN response.
func (e *Engine) searchVector(ctx context.Context, queryText string, k int, minSimilarity float32) ([]store.VectorCandidate, error) {
	vec, err := e.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := e.store.SearchVector(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	gated := make([]store.VectorCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Similarity < minSimilarity {
			continue
		}
		c.Rank = len(gated)
		gated = append(gated, c)
	}
	return gated, nil
}
