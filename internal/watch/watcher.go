package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdx":      true,
}

// Options configures a Watcher.
type Options struct {
	// DebounceWindow is how long to wait for a burst of events on the
	// same path to settle before emitting it. Default: 200ms.
	DebounceWindow time.Duration
}

func (o Options) withDefaults() Options {
	if o.DebounceWindow == 0 {
		o.DebounceWindow = 200 * time.Millisecond
	}
	return o
}

// Watcher watches a markdown file or directory tree with fsnotify and
// emits debounced batches of settled changes.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *debouncer
	rootPath  string
	watchFile string // set when the watched path is a single file, not a directory
	events    chan []FileEvent
	errors    chan error
	stopCh    chan struct{}
	mu        sync.Mutex
	stopped   bool
}

// New creates a Watcher. Call Start to begin watching.
func New(opts Options) (*Watcher, error) {
	opts = opts.withDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsw:       fsw,
		debouncer: newDebouncer(opts.DebounceWindow),
		events:    make(chan []FileEvent, 100),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}, nil
}

// Start begins watching path (a markdown file or a directory tree) and
// blocks until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat watch path: %w", err)
	}

	if info.IsDir() {
		w.rootPath = abs
		if err := w.addRecursive(abs); err != nil {
			return fmt.Errorf("add directories to watcher: %w", err)
		}
	} else {
		w.rootPath = filepath.Dir(abs)
		w.watchFile = abs
		if err := w.fsw.Add(w.rootPath); err != nil {
			return fmt.Errorf("watch parent directory: %w", err)
		}
	}

	go w.forwardDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.watchFile != "" && event.Name != w.watchFile {
		return
	}

	isDir := false
	if info, err := os.Stat(event.Name); err == nil {
		isDir = info.IsDir()
	}

	if w.watchFile == "" && w.shouldIgnoreDir(event.Name, isDir) {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
		if isDir && w.watchFile == "" {
			_ = w.fsw.Add(event.Name)
		}
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		return // chmod and anything else is irrelevant to content changes
	}

	if isDir {
		return
	}
	if w.watchFile == "" && !markdownExtensions[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}

	w.debouncer.add(FileEvent{Path: event.Name, Operation: op, Timestamp: time.Now()})
}

func (w *Watcher) shouldIgnoreDir(name string, isDir bool) bool {
	relPath, err := filepath.Rel(w.rootPath, name)
	if err != nil {
		relPath = name
	}
	if relPath == "." || relPath == "" {
		return true
	}
	base := filepath.Base(relPath)
	if isDir && (base == ".git" || strings.HasPrefix(relPath, ".git"+string(filepath.Separator))) {
		return true
	}
	return false
}

// addRecursive adds root and every non-hidden subdirectory to the
// fsnotify watch set.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip entries we can't access rather than aborting the whole walk
		}
		if !d.IsDir() {
			return nil
		}
		relPath, _ := filepath.Rel(root, path)
		if relPath != "." && strings.HasPrefix(filepath.Base(relPath), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) forwardDebounced(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case events, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			if len(events) == 0 {
				continue
			}
			w.emitEvents(events)
		}
	}
}

func (w *Watcher) emitEvents(events []FileEvent) {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}
	select {
	case w.events <- events:
	default:
		slog.Warn("watch event buffer full, dropping batch", slog.Int("batch_size", len(events)))
	}
}

func (w *Watcher) emitError(err error) {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}
	select {
	case w.errors <- err:
	default:
	}
}

// Events returns the channel of debounced file-event batches.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.events
}

// Errors returns the channel of non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher and releases resources. Safe to call more than
// once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.debouncer.Stop()
	_ = w.fsw.Close()
	close(w.events)
	close(w.errors)
	return nil
}
