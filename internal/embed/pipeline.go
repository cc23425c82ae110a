package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// l1Size is the L1 cache's fixed capacity, per the embedder design's
// 100-entry FIFO.
const l1Size = 100

// L2Cache is the subset of *store.Store the pipeline needs for persistent,
// content-addressed embedding lookups. A store satisfies this directly.
type L2Cache interface {
	GetCachedEmbedding(ctx context.Context, contentHash, modelID string) ([]float32, bool, error)
	PutCachedEmbedding(ctx context.Context, contentHash, modelID string, vector []float32) error
}

// Pipeline implements the embed(text) lookup order: L1 → L2 → backend,
// with the backend loaded at most once per process via a singleflight call
// so concurrent cache misses during warmup share one initialisation.
type Pipeline struct {
	loader  func(ctx context.Context) (Embedder, error)
	l2      L2Cache
	modelID string

	l1 *fifoCache

	mu      sync.RWMutex
	backend Embedder
	dims    int
	group   singleflight.Group
}

var _ Embedder = (*Pipeline)(nil)

// NewPipeline wraps loader (constructing the real backend on first use)
// with the two-tier cache. l2 may be nil to disable persistent caching
// (e.g. in tests using a bare StaticEmbedder).
func NewPipeline(loader func(ctx context.Context) (Embedder, error), l2 L2Cache, modelID string) *Pipeline {
	return &Pipeline{
		loader:  loader,
		l2:      l2,
		modelID: modelID,
		l1:      newFIFOCache(l1Size),
	}
}

// ensureLoaded returns the backend, constructing it at most once per
// process even under concurrent callers.
func (p *Pipeline) ensureLoaded(ctx context.Context) (Embedder, error) {
	p.mu.RLock()
	if p.backend != nil {
		b := p.backend
		p.mu.RUnlock()
		return b, nil
	}
	p.mu.RUnlock()

	v, err, _ := p.group.Do("model", func() (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.backend != nil {
			return p.backend, nil
		}
		b, err := p.loader(ctx)
		if err != nil {
			return nil, err
		}
		p.backend = b
		p.dims = b.Dimensions()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Embedder), nil
}

// WarmUp forces the backend to load and returns its output dimension, so
// callers can fail fast at startup on a dimension mismatch against the
// store rather than on the first Embed call.
func (p *Pipeline) WarmUp(ctx context.Context) (int, error) {
	b, err := p.ensureLoaded(ctx)
	if err != nil {
		return 0, err
	}
	return b.Dimensions(), nil
}

func contentHash(prefixed string) string {
	sum := sha256.Sum256([]byte(prefixed))
	return hex.EncodeToString(sum[:])
}

// Embed returns the vector for text, consulting L1 then L2 before falling
// through to the backend. L2 write failures are swallowed; the caller
// already has a valid vector and a cache row is best-effort.
func (p *Pipeline) Embed(ctx context.Context, text string) ([]float32, error) {
	prefixed := ClusteringPrefix + text

	if vec, ok := p.l1.get(prefixed); ok {
		return vec, nil
	}

	hash := contentHash(prefixed)
	if p.l2 != nil {
		if vec, ok, err := p.l2.GetCachedEmbedding(ctx, hash, p.modelID); err == nil && ok {
			p.l1.put(prefixed, vec)
			return vec, nil
		}
	}

	backend, err := p.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	vec, err := backend.Embed(ctx, prefixed)
	if err != nil {
		return nil, err
	}

	p.l1.put(prefixed, vec)
	if p.l2 != nil {
		_ = p.l2.PutCachedEmbedding(ctx, hash, p.modelID, vec)
	}
	return vec, nil
}

// EmbedBatch resolves each text through the same L1 → L2 → backend order,
// batching only the backend calls for entries that miss both caches.
func (p *Pipeline) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	prefixed := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		prefixed[i] = ClusteringPrefix + text
		if vec, ok := p.l1.get(prefixed[i]); ok {
			results[i] = vec
			continue
		}
		if p.l2 != nil {
			if vec, ok, err := p.l2.GetCachedEmbedding(ctx, contentHash(prefixed[i]), p.modelID); err == nil && ok {
				p.l1.put(prefixed[i], vec)
				results[i] = vec
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, prefixed[i])
	}

	if len(missIdx) == 0 {
		return results, nil
	}

	backend, err := p.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	embeddings, err := backend.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	for j, idx := range missIdx {
		results[idx] = embeddings[j]
		p.l1.put(prefixed[idx], embeddings[j])
		if p.l2 != nil {
			_ = p.l2.PutCachedEmbedding(ctx, contentHash(prefixed[idx]), p.modelID, embeddings[j])
		}
	}

	return results, nil
}

// Dimensions reports the backend's output width. It is 0 until WarmUp (or
// a first Embed call) has run; callers that need it at startup should call
// WarmUp first, which is exactly the composition root's job per the
// mismatch-is-fatal-at-startup rule.
func (p *Pipeline) Dimensions() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dims
}

func (p *Pipeline) ModelName() string {
	return p.modelID
}

func (p *Pipeline) Available(ctx context.Context) bool {
	p.mu.RLock()
	b := p.backend
	p.mu.RUnlock()
	if b == nil {
		return true // not yet loaded is not the same as unavailable
	}
	return b.Available(ctx)
}

func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backend == nil {
		return nil
	}
	return p.backend.Close()
}

// fifoCache is a process-local, insertion-ordered cache with pure FIFO
// eviction: no recency tracking, matching the embedder design's L1.
type fifoCache struct {
	mu    sync.Mutex
	cap   int
	order []string
	data  map[string][]float32
}

func newFIFOCache(capacity int) *fifoCache {
	return &fifoCache{
		cap:  capacity,
		data: make(map[string][]float32, capacity),
	}
}

func (c *fifoCache) get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vec, ok := c.data[key]
	return vec, ok
}

func (c *fifoCache) put(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.data[key]; exists {
		c.data[key] = vec
		return
	}
	if len(c.order) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.data, oldest)
	}
	c.order = append(c.order, key)
	c.data[key] = vec
}
