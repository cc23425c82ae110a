package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func testSnapshot() Snapshot {
	return Snapshot{
		EmbeddingProvider:    "ollama",
		EmbeddingModel:       "nomic-embed-text",
		EmbeddingDimensions:  768,
		DBPath:               "/tmp/project/.memo/memo.db",
		SimilarityThreshold:  0.5,
		MinVectorSimilarity:  0.6,
		DeduplicationEnabled: true,
		Containers: []ContainerCount{
			{ContainerTag: "project:abc123", Count: 12},
		},
	}
}

func TestModel_ViewContainsEmbedderInfo(t *testing.T) {
	m := newModel(testSnapshot(), NoColorStyles())
	view := m.View()
	assert.Contains(t, view, "ollama")
	assert.Contains(t, view, "nomic-embed-text")
	assert.Contains(t, view, "768")
}

func TestModel_ViewContainsContainerCounts(t *testing.T) {
	m := newModel(testSnapshot(), NoColorStyles())
	view := m.View()
	assert.Contains(t, view, "project:abc123")
	assert.Contains(t, view, "12")
}

func TestModel_ViewReportsEmptyStore(t *testing.T) {
	snap := testSnapshot()
	snap.Containers = nil
	m := newModel(snap, NoColorStyles())
	assert.Contains(t, m.View(), "no memories stored yet")
}

func TestModel_QuitKeysReturnQuitCommand(t *testing.T) {
	m := newModel(testSnapshot(), NoColorStyles())
	for _, key := range []string{"q", "esc", "ctrl+c"} {
		_, cmd := m.Update(tea.KeyMsg{Type: keyTypeFor(key), Runes: []rune(key)})
		assert.NotNil(t, cmd)
	}
}

func TestModel_WindowSizeMsgUpdatesDimensions(t *testing.T) {
	m := newModel(testSnapshot(), NoColorStyles())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	mm := updated.(model)
	assert.Equal(t, 120, mm.width)
	assert.Equal(t, 40, mm.height)
}

func keyTypeFor(key string) tea.KeyType {
	switch key {
	case "q":
		return tea.KeyRunes
	case "esc":
		return tea.KeyEsc
	case "ctrl+c":
		return tea.KeyCtrlC
	default:
		return tea.KeyRunes
	}
}

func TestModel_ViewStaysWithinMinimumWidth(t *testing.T) {
	m := newModel(testSnapshot(), NoColorStyles())
	m.width = 10
	view := m.View()
	assert.True(t, strings.Contains(view, "memo status"))
}
