package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_MatchKeyTable(t *testing.T) {
	d := Defaults()
	assert.Equal(t, "ollama", d.EmbeddingProvider)
	assert.Equal(t, "nomic-embed-text", d.EmbeddingModel)
	assert.Equal(t, 768, d.EmbeddingDimensions)
	assert.InDelta(t, 0.6, d.SimilarityThreshold, 0.0001)
	assert.InDelta(t, 0.6, d.MinVectorSimilarity, 0.0001)
	assert.Equal(t, 10, d.MaxMemories)
	assert.True(t, d.DeduplicationEnabled)
	assert.InDelta(t, 0.9, d.DeduplicationSimilarityThreshold, 0.0001)
	assert.Empty(t, d.CustomSqlitePath)
}

func TestLoad_NoFileWritesTemplateAndReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults().EmbeddingModel, cfg.EmbeddingModel)

	data, err := os.ReadFile(ConfigFilePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "embeddingModel")
}

func TestLoad_OverlaysOnlySetKeys(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, "memo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.jsonc"), []byte(`{
		// a comment the stripper must remove
		"maxMemories": 25,
	}`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.MaxMemories)
	assert.Equal(t, Defaults().EmbeddingModel, cfg.EmbeddingModel, "unset keys keep their default")
}

func TestLoad_JSONPreferredOverJSONCWhenJSONCMissing(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, "memo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"maxMemories": 5}`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxMemories)
}

func TestLoad_DeduplicationEnabledExplicitFalseOverridesDefaultTrue(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, "memo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.jsonc"), []byte(`{"deduplicationEnabled": false}`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.DeduplicationEnabled, "an explicit false must not be masked by the true default")
}

func TestLoad_MalformedFileIsError(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, "memo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.jsonc"), []byte(`{not valid json`), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestUserConfigDir_FallsBackToHomeWhenXDGUnset(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := UserConfigDir()
	assert.Equal(t, filepath.Join(home, ".config", "memo"), dir)
}
