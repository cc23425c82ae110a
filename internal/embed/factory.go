package embed

import (
	"context"
	"fmt"
	"strings"
)

// ProviderType selects which backend a Pipeline's loader constructs.
type ProviderType string

const (
	// ProviderOllama talks to a local Ollama server's /api/embed endpoint.
	ProviderOllama ProviderType = "ollama"

	// ProviderStatic uses the deterministic hash-based embedder, for
	// offline operation and tests.
	ProviderStatic ProviderType = "static"
)

// ParseProvider converts a config string to a ProviderType, defaulting to
// Ollama for anything unrecognised.
func ParseProvider(s string) ProviderType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static":
		return ProviderStatic
	default:
		return ProviderOllama
	}
}

func (p ProviderType) String() string { return string(p) }

// NewLoader returns the loader function a Pipeline uses to construct its
// backend on first use. dimensions, when nonzero, fixes and validates the
// backend's output width against the store's configured dimension; for
// Ollama a nonzero value also skips dimension auto-detection.
func NewLoader(provider ProviderType, model string, dimensions int) func(ctx context.Context) (Embedder, error) {
	return func(ctx context.Context) (Embedder, error) {
		switch provider {
		case ProviderStatic:
			dims := dimensions
			if dims <= 0 {
				dims = DefaultStaticDimensions
			}
			return NewStaticEmbedder(dims), nil

		case ProviderOllama:
			cfg := DefaultOllamaConfig()
			if model != "" {
				cfg.Model = model
			}
			cfg.Dimensions = dimensions
			embedder, err := NewOllamaEmbedder(ctx, cfg)
			if err != nil {
				return nil, fmt.Errorf("ollama unavailable: %w (try embeddingProvider: static for offline use)", err)
			}
			if dimensions > 0 && embedder.Dimensions() != dimensions {
				return nil, fmt.Errorf("ollama model %q produces %d-dim vectors, store expects %d", cfg.Model, embedder.Dimensions(), dimensions)
			}
			return embedder, nil

		default:
			return nil, fmt.Errorf("unknown embedding provider %q", provider)
		}
	}
}

// DefaultStaticDimensions is used when the static provider is selected
// without an explicit store dimension (e.g. a brand-new project).
const DefaultStaticDimensions = 256
