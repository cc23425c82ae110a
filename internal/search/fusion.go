package search

import (
	"math"

	"github.com/go-memo/memo/internal/store"
)

// fusionEntry accumulates one id's Reciprocal Rank Fusion score across
// whichever of the two candidate lists it appeared in.
type fusionEntry struct {
	id            string
	rrf           float64
	inVector      bool
	inFullText    bool
	vecSimilarity float32
}

// fuse implements Stage 3: RRF(id) = Σ 1/(k + rank) over the lists id
// appears in, unweighted. vec and bm25 are expected pre-gated (Stage 1's
// similarity floor already applied to vec).
func fuse(vec []store.VectorCandidate, bm25 []store.FullTextCandidate) map[string]*fusionEntry {
	entries := make(map[string]*fusionEntry, len(vec)+len(bm25))

	get := func(id string) *fusionEntry {
		e, ok := entries[id]
		if !ok {
			e = &fusionEntry{id: id}
			entries[id] = e
		}
		return e
	}

	for _, c := range vec {
		e := get(c.ID)
		e.inVector = true
		e.vecSimilarity = c.Similarity
		e.rrf += 1.0 / float64(RRFConstant+c.Rank)
	}
	for _, c := range bm25 {
		e := get(c.ID)
		e.inFullText = true
		e.rrf += 1.0 / float64(RRFConstant+c.Rank)
	}

	return entries
}

// normalizeSimilarity implements Stage 5's three-case table. The
// vector-only case deliberately reports the raw cosine similarity rather
// than an RRF-normalised score: normalising a single-list RRF against that
// list's own maximum (1/k) collapses every vector-only hit toward a ~0.5
// floor regardless of how close the match actually is.
func normalizeSimilarity(e *fusionEntry) float32 {
	const k = float64(RRFConstant)
	switch {
	case e.inVector && e.inFullText:
		return float32(math.Min(e.rrf/(2.0/k), 1.0))
	case e.inFullText:
		return float32(math.Min(e.rrf/(1.0/k), 1.0))
	default:
		return e.vecSimilarity
	}
}
