package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// model is the Bubble Tea model for the status dashboard: a static
// Snapshot plus the terminal dimensions needed to size the panel.
type model struct {
	snap   Snapshot
	styles Styles
	width  int
	height int
	table  table.Model
}

func newModel(snap Snapshot, styles Styles) model {
	m := model{snap: snap, styles: styles, width: 80, height: 24}
	m.table = buildContainerTable(snap.Containers)
	return m
}

func buildContainerTable(containers []ContainerCount) table.Model {
	columns := []table.Column{
		{Title: "container", Width: 48},
		{Title: "count", Width: 8},
	}
	rows := make([]table.Row, 0, len(containers))
	for _, c := range containers {
		rows = append(rows, table.Row{c.ContainerTag, fmt.Sprintf("%d", c.Count)})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(len(rows) > 0),
		table.WithHeight(len(rows)+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color(ColorWhite)).Background(lipgloss.Color(""))
	t.SetStyles(s)
	return t
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	width := m.width - 4
	if width < 40 {
		width = 40
	}

	var sections []string
	sections = append(sections, m.renderEmbedder())
	sections = append(sections, m.renderDivider(width))
	sections = append(sections, m.renderThresholds())
	sections = append(sections, m.renderDivider(width))
	sections = append(sections, m.renderContainers())

	content := strings.Join(sections, "\n")

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDarkGray)).
		Padding(0, 1).
		Width(width)

	title := m.styles.Header.Render("memo status")
	hint := m.styles.Dim.Render("q to quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, panel.Render(content), hint)
}

func (m model) renderEmbedder() string {
	provider := m.snap.EmbeddingProvider
	if m.snap.DeduplicationEnabled {
		provider += " (dedup on)"
	} else {
		provider += " (dedup off)"
	}
	return fmt.Sprintf("%s %s\n%s %s (%d dims)\n%s %s",
		m.styles.Label.Render("provider:"), m.styles.Value.Render(provider),
		m.styles.Label.Render("model:"), m.styles.Value.Render(m.snap.EmbeddingModel), m.snap.EmbeddingDimensions,
		m.styles.Label.Render("db:"), m.styles.Value.Render(m.snap.DBPath))
}

func (m model) renderThresholds() string {
	return fmt.Sprintf("%s %.2f   %s %.2f",
		m.styles.Label.Render("similarity threshold:"), m.snap.SimilarityThreshold,
		m.styles.Label.Render("min vector similarity:"), m.snap.MinVectorSimilarity)
}

func (m model) renderContainers() string {
	if len(m.snap.Containers) == 0 {
		return m.styles.Dim.Render("no memories stored yet")
	}
	return m.table.View()
}

func (m model) renderDivider(width int) string {
	return m.styles.Border.Render(strings.Repeat("─", width))
}
