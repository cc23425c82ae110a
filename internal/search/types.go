// Package search implements memo's hybrid retrieval: a vector KNN gate, a
// BM25 full-text pass, and Reciprocal Rank Fusion over the two, against a
// single container-scoped store.
package search

import "context"

// DefaultLimit is the result count returned when a caller doesn't set one.
const DefaultLimit = 10

// MaxLimit caps how many results a single search may return, regardless of
// the caller's requested limit.
const MaxLimit = 200

// DefaultThreshold is the similarity floor applied in Stage 6 when the
// caller doesn't set one.
const DefaultThreshold float32 = 0.0

// DefaultMinVectorSimilarity is the Stage 1 KNN gate: candidates with a
// lower cosine similarity than this are discarded before fusion.
const DefaultMinVectorSimilarity float32 = 0.6

// RRFConstant is the k term in RRF(id) = Σ 1/(k + rank), fixed per the
// algorithm's definition rather than configurable.
const RRFConstant = 60

// Embedder is the subset of embed.Pipeline's surface that Search needs to
// turn query text into a query vector. Kept narrow so this package doesn't
// import the embed package's full surface.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options configures one Search call. A zero Options is valid: it searches
// both subsystems, unscoped, with the package defaults.
type Options struct {
	// ContainerTag restricts BM25 and the post-KNN fetch to one container.
	// Empty means unscoped.
	ContainerTag string

	// Limit is the maximum number of results returned. Zero selects
	// DefaultLimit; values above MaxLimit are clamped.
	Limit int

	// Threshold is the Stage 6 similarity floor. Zero selects
	// DefaultThreshold (no floor beyond Stage 1's gate).
	Threshold float32

	// MinVectorSimilarity overrides the Stage 1 gate. Zero selects
	// DefaultMinVectorSimilarity.
	MinVectorSimilarity float32

	// SkipVector, when true, omits Stage 1 entirely (BM25-only search).
	SkipVector bool

	// SkipFullText, when true, omits Stage 2 entirely (vector-only search).
	SkipFullText bool
}

// Result is one observable search hit: the stored record's content plus
// its fused similarity score and provenance fields needed for rendering.
type Result struct {
	ID           string
	Content      string
	Similarity   float32
	CreatedAt    int64
	Type         string
	Metadata     string
	ContainerTag string

	// InVectorList and InFullTextList report which Stage 1/2 lists this id
	// survived in, for callers that want to display match provenance.
	InVectorList   bool
	InFullTextList bool
}
