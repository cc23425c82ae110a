// Package embed turns text into unit-length Float32 vectors for the store's
// vec0 index, fronted by the prefixing/caching/singleton pipeline described
// in the embedder design.
package embed

import (
	"context"
	"math"
	"time"
)

const (
	// DefaultBatchSize bounds how many uncached texts are sent to a backend
	// in one request.
	DefaultBatchSize = 32

	// EmbedTimeout is the fixed deadline applied to a single inference call
	// (cache misses only; hits never touch the backend).
	EmbedTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of attempts (including the first) made
	// against a backend before EmbedTimeout's caller gives up.
	DefaultMaxRetries = 3

	// ClusteringPrefix is prepended to every text before it reaches
	// inference, symmetrically for stored content and queries. It is a
	// contract, not a tunable: dedup and search normalisation both depend on
	// identical text producing an identical vector.
	ClusteringPrefix = "clustering: "
)

// Embedder maps text to a unit-length vector of Dimensions() width under a
// fixed model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
	Available(ctx context.Context) bool
	Close() error
}

// normalizeVector L2-normalises v in place semantics (returns a new slice);
// a zero vector is returned unchanged since it has no direction to impose.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}
	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
