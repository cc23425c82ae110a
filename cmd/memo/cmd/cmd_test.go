package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestEnv points XDG_CONFIG_HOME at a throwaway config directory
// with a static, offline embedder, and chdirs into a throwaway project
// root, so commands under test never touch the real user config or an
// Ollama server.
func setupTestEnv(t *testing.T) {
	t.Helper()

	configDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(configDir, "memo"), 0o755))
	configJSON := `{"embeddingProvider": "static", "embeddingDimensions": 64, "deduplicationSimilarityThreshold": 0.9}`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "memo", "config.jsonc"), []byte(configJSON), 0o644))
	t.Setenv("XDG_CONFIG_HOME", configDir)

	projectDir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(projectDir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestAddAndList_RoundTrips(t *testing.T) {
	setupTestEnv(t)

	out, err := runCmd(t, "add", "the", "auth", "service", "uses", "JWT")
	require.NoError(t, err)
	require.Contains(t, out, "stored")

	out, err = runCmd(t, "list")
	require.NoError(t, err)
	require.Contains(t, out, "JWT")
}

func TestAdd_DuplicateIsSkipped(t *testing.T) {
	setupTestEnv(t)

	_, err := runCmd(t, "add", "duplicate text")
	require.NoError(t, err)

	out, err := runCmd(t, "add", "duplicate text")
	require.NoError(t, err)
	require.Contains(t, out, "skipped")
}

func TestSearch_FindsStoredMemory(t *testing.T) {
	setupTestEnv(t)

	_, err := runCmd(t, "add", "payments run through Stripe")
	require.NoError(t, err)

	out, err := runCmd(t, "search", "Stripe")
	require.NoError(t, err)
	require.Contains(t, out, "Stripe")
}

func TestForget_RemovesRecord(t *testing.T) {
	setupTestEnv(t)

	out, err := runCmd(t, "add", "forget this one")
	require.NoError(t, err)
	id := extractID(out)
	require.NotEmpty(t, id)

	out, err = runCmd(t, "forget", id)
	require.NoError(t, err)
	require.Contains(t, out, "forgot")

	out, err = runCmd(t, "list")
	require.NoError(t, err)
	require.Contains(t, out, "no memories stored yet")
}

func TestForget_MissingIDReturnsError(t *testing.T) {
	setupTestEnv(t)

	_, err := runCmd(t, "forget", "mem_0_doesnotexist0")
	require.Error(t, err)
}

func TestReindex_ReportsZeroOnEmptyStore(t *testing.T) {
	setupTestEnv(t)

	out, err := runCmd(t, "reindex")
	require.NoError(t, err)
	require.Contains(t, out, "0 added")
}

func TestStatus_ReportsEmbedderAndCounts(t *testing.T) {
	setupTestEnv(t)

	_, err := runCmd(t, "add", "one memory")
	require.NoError(t, err)

	out, err := runCmd(t, "status")
	require.NoError(t, err)
	require.Contains(t, out, "static")
	require.Contains(t, out, "project:")
}

func TestReset_RequiresConfirmation(t *testing.T) {
	setupTestEnv(t)

	out, err := runCmd(t, "reset")
	require.NoError(t, err)
	require.Contains(t, out, "--yes")

	_, err = runCmd(t, "add", "something")
	require.NoError(t, err)

	out, err = runCmd(t, "reset", "--yes")
	require.NoError(t, err)
	require.Contains(t, out, "reset")
}

func TestVersion_PrintsShortVersion(t *testing.T) {
	out, err := runCmd(t, "version", "--short")
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestImportMarkdown_StoresChunks(t *testing.T) {
	setupTestEnv(t)

	dir := t.TempDir()
	notePath := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(notePath, []byte("# Notes\n\nThe deploy pipeline runs on every merge to main."), 0o644))

	out, err := runCmd(t, "import", notePath)
	require.NoError(t, err)
	require.Contains(t, out, "imported")

	out, err = runCmd(t, "search", "deploy pipeline")
	require.NoError(t, err)
	require.Contains(t, out, "deploy")
}

func extractID(line string) string {
	const prefix = "✅ stored "
	idx := len(prefix)
	if len(line) <= idx {
		return ""
	}
	end := idx
	for end < len(line) && line[end] != '\n' {
		end++
	}
	return line[idx:end]
}
