package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-memo/memo/internal/importer"
	"github.com/go-memo/memo/internal/store"
)

type fakeImporter struct {
	mu       sync.Mutex
	imported []string
	forgotten []string
}

func (f *fakeImporter) ImportMarkdown(ctx context.Context, path, containerTag string, opts importer.ChunkOptions) (importer.MarkdownResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imported = append(f.imported, path)
	return importer.MarkdownResult{}, nil
}

func (f *fakeImporter) ForgetMarkdown(ctx context.Context, containerTag, path string) (store.ReplaceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgotten = append(f.forgotten, path)
	return store.ReplaceResult{}, nil
}

func (f *fakeImporter) snapshot() (imported, forgotten []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.imported...), append([]string(nil), f.forgotten...)
}

func TestRunImport_ReimportsOnModify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	w, err := New(Options{DebounceWindow: 30 * time.Millisecond})
	require.NoError(t, err)

	fake := &fakeImporter{}
	ctx, cancel := context.WithCancel(context.Background())

	runErr := make(chan error, 1)
	go func() { runErr <- RunImport(ctx, w, dir, "project:abc", importer.ChunkOptions{}, fake) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	require.Eventually(t, func() bool {
		imported, _ := fake.snapshot()
		return len(imported) == 1 && imported[0] == path
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	<-runErr
}

func TestRunImport_ForgetsOnDelete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	w, err := New(Options{DebounceWindow: 30 * time.Millisecond})
	require.NoError(t, err)

	fake := &fakeImporter{}
	ctx, cancel := context.WithCancel(context.Background())

	runErr := make(chan error, 1)
	go func() { runErr <- RunImport(ctx, w, dir, "project:abc", importer.ChunkOptions{}, fake) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		_, forgotten := fake.snapshot()
		return len(forgotten) == 1 && forgotten[0] == path
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	<-runErr
}

func TestRunImport_ReturnsContextErrorOnCancel(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Options{DebounceWindow: 30 * time.Millisecond})
	require.NoError(t, err)

	fake := &fakeImporter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = RunImport(ctx, w, dir, "project:abc", importer.ChunkOptions{}, fake)
	assert.ErrorIs(t, err, context.Canceled)
}
