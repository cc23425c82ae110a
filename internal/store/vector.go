package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/go-memo/memo/internal/memoerrors"
)

// deserializeFloat32 decodes sqlite-vec's little-endian Float32 wire
// format back into a vector, aliasing no intermediate allocation beyond
// the destination slice itself.
func deserializeFloat32(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	out := make([]float32, len(blob)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(blob[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

// SearchVector runs an exact-KNN cosine search for the k nearest
// neighbours of query across the whole store. The vec0 virtual table
// ranks globally, so any container scoping is the caller's
// responsibility, applied after these results come back (see
// FindNearDuplicates and search.Engine's Stage 4 fetch-and-scope-filter).
// Candidates are ordered by ascending distance (descending similarity).
func (s *Store) SearchVector(ctx context.Context, query []float32, k int) ([]VectorCandidate, error) {
	if len(query) != s.dimensions {
		return nil, memoerrors.InvalidInput(fmt.Sprintf("query vector has %d dims, store expects %d", len(query), s.dimensions))
	}
	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, fmt.Errorf("serialize query vector: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.memory_id, v.distance
		FROM vec_memories v
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var out []VectorCandidate
	rank := 0
	for rows.Next() {
		var id string
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, fmt.Errorf("scan vector result: %w", err)
		}
		out = append(out, VectorCandidate{
			ID:         id,
			Similarity: float32(1.0 - distance),
			Rank:       rank,
		})
		rank++
	}
	return out, rows.Err()
}

// nearDuplicateK is the fixed KNN width for FindNearDuplicates, per
// spec.md §4.3.
const nearDuplicateK = 5

// FindNearDuplicates implements the Deduper's restricted search: a KNN
// lookup with k=5, filtered to candidates at or above threshold cosine
// similarity AND belonging to containerTag. The container filter is
// applied here, after SearchVector's global ranking, never pushed into
// the KNN query itself.
func (s *Store) FindNearDuplicates(ctx context.Context, query []float32, containerTag string, threshold float32) ([]VectorCandidate, error) {
	candidates, err := s.SearchVector(ctx, query, nearDuplicateK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	records, err := s.GetByIDs(ctx, ids, containerTag)
	if err != nil {
		return nil, fmt.Errorf("resolve near-duplicate candidates: %w", err)
	}
	inContainer := make(map[string]bool, len(records))
	for _, r := range records {
		inContainer[r.ID] = true
	}

	var out []VectorCandidate
	for _, c := range candidates {
		if c.Similarity >= threshold && inContainer[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

// SearchFullText runs a BM25 full-text query, ordered by relevance
// (best match first), optionally restricted to containerTag. A tokenizer
// grammar error (special characters in query) surfaces to the caller as a
// *memoerrors.MemoError of KindFullTextQueryError, which Search treats as
// non-fatal and falls back to vector-only.
func (s *Store) SearchFullText(ctx context.Context, query string, limit int, containerTag string) ([]FullTextCandidate, error) {
	sqlQuery := `
		SELECT memory_id FROM fts_memories
		WHERE fts_memories MATCH ?
		ORDER BY bm25(fts_memories)
		LIMIT ?`
	args := []any{query, limit}
	if containerTag != "" {
		sqlQuery = `
			SELECT memory_id FROM fts_memories
			WHERE fts_memories MATCH ? AND container_tag = ?
			ORDER BY bm25(fts_memories)
			LIMIT ?`
		args = []any{query, containerTag, limit}
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, memoerrors.FullTextQueryError("full-text query rejected by FTS5 grammar", err)
	}
	defer rows.Close()

	var out []FullTextCandidate
	rank := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan fts result: %w", err)
		}
		out = append(out, FullTextCandidate{ID: id, Rank: rank})
		rank++
	}
	return out, rows.Err()
}
