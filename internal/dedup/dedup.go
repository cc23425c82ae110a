// Package dedup decides whether a candidate memory should be blocked as a
// duplicate of something already stored in the same container.
package dedup

import (
	"context"

	"github.com/go-memo/memo/internal/store"
)

// Verdict classifies the outcome of a duplicate check.
type Verdict string

const (
	// NotDuplicate means the candidate may be inserted.
	NotDuplicate Verdict = "not_duplicate"
	// ExactDuplicate means a record with identical content already exists
	// in the same container.
	ExactDuplicate Verdict = "exact_duplicate"
	// NearDuplicate means a sufficiently similar vector already exists in
	// the same container.
	NearDuplicate Verdict = "near_duplicate"
)

// defaultThreshold is the cosine-similarity floor for a near-duplicate
// match, per spec.md §4.3.
const defaultThreshold float32 = 0.9

// Result reports a duplicate check's outcome. ExistingID and Similarity
// are only meaningful when Verdict is not NotDuplicate.
type Result struct {
	Verdict    Verdict
	ExistingID string
	Similarity float32
}

// Candidate is the (content, vector, container) tuple being checked.
type Candidate struct {
	Content      string
	Vector       []float32
	ContainerTag string
}

// Options configures a Deduper.
type Options struct {
	// Enabled gates the whole protocol; when false, Check always reports
	// NotDuplicate without touching the store.
	Enabled bool

	// Threshold is the cosine-similarity floor for a near-duplicate match.
	// Zero selects the default (0.9).
	Threshold float32
}

// Deduper implements the spec's four-step duplicate-detection protocol
// against a store.
type Deduper struct {
	store     *store.Store
	enabled   bool
	threshold float32
}

// New creates a Deduper backed by s.
func New(s *store.Store, opts Options) *Deduper {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	return &Deduper{
		store:     s,
		enabled:   opts.Enabled,
		threshold: threshold,
	}
}

// Check runs the protocol: disabled → not duplicate; exact content match in
// the same container → exact duplicate; otherwise a k=5 KNN lookup filtered
// to same-container candidates at or above the threshold → near duplicate
// on the closest match; otherwise not duplicate.
func (d *Deduper) Check(ctx context.Context, c Candidate) (Result, error) {
	if !d.enabled {
		return Result{Verdict: NotDuplicate}, nil
	}

	if existing, err := d.store.FindExactDuplicate(ctx, c.Content, c.ContainerTag); err != nil {
		return Result{}, err
	} else if existing != nil {
		return Result{Verdict: ExactDuplicate, ExistingID: existing.ID, Similarity: 1.0}, nil
	}

	candidates, err := d.store.FindNearDuplicates(ctx, c.Vector, c.ContainerTag, d.threshold)
	if err != nil {
		return Result{}, err
	}
	if len(candidates) == 0 {
		return Result{Verdict: NotDuplicate}, nil
	}

	closest := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.Similarity > closest.Similarity {
			closest = cand
		}
	}
	return Result{Verdict: NearDuplicate, ExistingID: closest.ID, Similarity: closest.Similarity}, nil
}
