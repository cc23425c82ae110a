// Package tui implements the `memo status --interactive` dashboard: a
// Bubble Tea view over a single status snapshot, in the teacher's
// bordered-panel idiom (internal/ui's indexing dashboard) but for a
// static snapshot rather than a live progress stream.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// ContainerCount is one row of the per-container breakdown.
type ContainerCount struct {
	ContainerTag string
	Count        int
}

// Snapshot is the data the dashboard renders. It is a plain struct rather
// than a reference to pkg/memo.Status so this package stays a pure
// presentation layer: the caller (cmd/memo) converts the engine's Status
// into a Snapshot.
type Snapshot struct {
	EmbeddingProvider    string
	EmbeddingModel       string
	EmbeddingDimensions  int
	DBPath               string
	SimilarityThreshold  float32
	MinVectorSimilarity  float32
	DeduplicationEnabled bool
	Containers           []ContainerCount
}

// IsTTY reports whether w is a terminal, the same test the teacher's
// renderer selection runs before attempting Bubble Tea output.
func IsTTY(w *os.File) bool {
	if w == nil {
		return false
	}
	return isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
}

// Run renders snap as an interactive dashboard on stdout until the user
// quits (q, esc, or ctrl+c). Falls back to returning an error immediately
// if stdout isn't a terminal, so callers can print the plain-text status
// instead.
func Run(snap Snapshot) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("status --interactive requires a terminal")
	}

	styles := DefaultStyles()
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		styles = NoColorStyles()
	}

	m := newModel(snap, styles)
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
