// Package config loads memo's process-wide configuration: a JSON-with-
// comments file overlaid on built-in defaults, producing a frozen record
// consumed once at startup.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-memo/memo/internal/jsonc"
)

// Config is the frozen, process-wide configuration record. It is built
// once by Load and never mutated afterward; callers needing a different
// value construct a new Config rather than editing this one in place.
type Config struct {
	StoragePath                      string  `json:"storagePath"`
	CustomSqlitePath                 string  `json:"customSqlitePath"`
	EmbeddingProvider                string  `json:"embeddingProvider"`
	EmbeddingModel                   string  `json:"embeddingModel"`
	EmbeddingDimensions               int     `json:"embeddingDimensions"`
	SimilarityThreshold               float32 `json:"similarityThreshold"`
	MinVectorSimilarity               float32 `json:"minVectorSimilarity"`
	MaxMemories                       int     `json:"maxMemories"`
	DeduplicationEnabled              bool    `json:"deduplicationEnabled"`
	DeduplicationSimilarityThreshold  float32 `json:"deduplicationSimilarityThreshold"`
}

// Defaults returns the built-in configuration, matching the key table:
// storagePath defaults under the user config directory, embeddingModel
// defaults to the bundled nomic-embed model at its native 768 dimensions,
// similarityThreshold/minVectorSimilarity are the Stage 6/Stage 1 cutoffs,
// maxMemories is the default search limit, and deduplication is enabled
// at the tier-2 (high-confidence) threshold. embeddingProvider defaults to
// "ollama"; set it to "static" for offline operation without a running
// model server.
func Defaults() Config {
	return Config{
		StoragePath:                      defaultStoragePath(),
		CustomSqlitePath:                 "",
		EmbeddingProvider:                "ollama",
		EmbeddingModel:                   "nomic-embed-text",
		EmbeddingDimensions:              768,
		SimilarityThreshold:               0.6,
		MinVectorSimilarity:              0.6,
		MaxMemories:                      10,
		DeduplicationEnabled:              true,
		DeduplicationSimilarityThreshold: 0.9,
	}
}

func defaultStoragePath() string {
	return filepath.Join(UserConfigDir(), "data")
}

// Load overlays the JSONC file at <user-config-dir>/memo/config.jsonc (or
// .json, tried second) atop Defaults(). If neither file exists, it writes
// the commented-out template and returns the defaults unchanged.
func Load() (Config, error) {
	cfg := Defaults()

	path, data, err := readConfigFile()
	if err != nil {
		return Config{}, err
	}
	if data == nil {
		if err := writeTemplate(); err != nil {
			return Config{}, fmt.Errorf("write config template: %w", err)
		}
		return cfg, nil
	}

	stripped := jsonc.Strip(data)
	var overlay Config
	if err := json.Unmarshal(stripped, &overlay); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	var rawKeys map[string]json.RawMessage
	if err := json.Unmarshal(stripped, &rawKeys); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	mergeOverlay(&cfg, overlay, rawKeys)
	return cfg, nil
}

// readConfigFile returns the path and raw bytes of whichever of
// config.jsonc / config.json exists first, or a nil byte slice if
// neither does.
func readConfigFile() (string, []byte, error) {
	dir := UserConfigDir()
	for _, name := range []string{"config.jsonc", "config.json"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err == nil {
			return path, data, nil
		}
		if !os.IsNotExist(err) {
			return "", nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	return "", nil, nil
}

// mergeOverlay copies every field overlay's file actually set onto cfg,
// the same "file only overrides what it sets" rule the teacher's
// mergeWith applies field by field. Most fields use their zero value as
// the "unset" signal; deduplicationEnabled defaults to true, so its zero
// value (false) is a meaningful override and is instead gated on raw-key
// presence in the decoded JSON object.
func mergeOverlay(cfg *Config, overlay Config, rawKeys map[string]json.RawMessage) {
	if overlay.StoragePath != "" {
		cfg.StoragePath = overlay.StoragePath
	}
	if overlay.CustomSqlitePath != "" {
		cfg.CustomSqlitePath = overlay.CustomSqlitePath
	}
	if overlay.EmbeddingProvider != "" {
		cfg.EmbeddingProvider = overlay.EmbeddingProvider
	}
	if overlay.EmbeddingModel != "" {
		cfg.EmbeddingModel = overlay.EmbeddingModel
	}
	if overlay.EmbeddingDimensions != 0 {
		cfg.EmbeddingDimensions = overlay.EmbeddingDimensions
	}
	if overlay.SimilarityThreshold != 0 {
		cfg.SimilarityThreshold = overlay.SimilarityThreshold
	}
	if overlay.MinVectorSimilarity != 0 {
		cfg.MinVectorSimilarity = overlay.MinVectorSimilarity
	}
	if overlay.MaxMemories != 0 {
		cfg.MaxMemories = overlay.MaxMemories
	}
	if overlay.DeduplicationSimilarityThreshold != 0 {
		cfg.DeduplicationSimilarityThreshold = overlay.DeduplicationSimilarityThreshold
	}
	if _, present := rawKeys["deduplicationEnabled"]; present {
		cfg.DeduplicationEnabled = overlay.DeduplicationEnabled
	}
}
