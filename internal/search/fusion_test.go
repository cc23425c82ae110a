package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-memo/memo/internal/store"
)

func TestFuse_BothListsAccumulatesBothRanks(t *testing.T) {
	vec := []store.VectorCandidate{{ID: "a", Similarity: 0.9, Rank: 0}}
	bm25 := []store.FullTextCandidate{{ID: "a", Rank: 0}}

	entries := fuse(vec, bm25)
	e := entries["a"]
	assert.True(t, e.inVector)
	assert.True(t, e.inFullText)
	assert.InDelta(t, 2.0/60.0, e.rrf, 1e-9)
}

func TestFuse_DisjointListsEachKeepTheirOwnEntry(t *testing.T) {
	vec := []store.VectorCandidate{{ID: "a", Similarity: 0.7, Rank: 0}}
	bm25 := []store.FullTextCandidate{{ID: "b", Rank: 0}}

	entries := fuse(vec, bm25)
	require.Len(t, entries, 2)
	assert.True(t, entries["a"].inVector)
	assert.False(t, entries["a"].inFullText)
	assert.True(t, entries["b"].inFullText)
	assert.False(t, entries["b"].inVector)
}

func TestNormalizeSimilarity_BothListsUsesDoubleRRFDenominator(t *testing.T) {
	// rank 0 in both lists: rrf = 1/60 + 1/60 = 2/60, normalized against
	// 2/k = 2/60 -> 1.0
	e := &fusionEntry{inVector: true, inFullText: true, rrf: 2.0 / 60.0}
	assert.InDelta(t, 1.0, normalizeSimilarity(e), 1e-6)
}

func TestNormalizeSimilarity_BM25OnlyUsesSingleRRFDenominator(t *testing.T) {
	// rank 0 in bm25 only: rrf = 1/60, normalized against 1/k = 1/60 -> 1.0
	e := &fusionEntry{inFullText: true, rrf: 1.0 / 60.0}
	assert.InDelta(t, 1.0, normalizeSimilarity(e), 1e-6)
}

func TestNormalizeSimilarity_BM25OnlyLowerRankIsBelowOne(t *testing.T) {
	// rank 9 in bm25 only: rrf = 1/69, well below the 1/60 denominator.
	e := &fusionEntry{inFullText: true, rrf: 1.0 / 69.0}
	sim := normalizeSimilarity(e)
	assert.Less(t, sim, float32(1.0))
	assert.Greater(t, sim, float32(0.0))
}

func TestNormalizeSimilarity_VectorOnlyReportsRawCosineNotRRF(t *testing.T) {
	e := &fusionEntry{inVector: true, vecSimilarity: 0.73, rrf: 1.0 / 60.0}
	assert.Equal(t, float32(0.73), normalizeSimilarity(e))
}

func TestNormalizeSimilarity_CapsAtOne(t *testing.T) {
	e := &fusionEntry{inVector: true, inFullText: true, rrf: 10.0}
	assert.Equal(t, float32(1.0), normalizeSimilarity(e))
}
