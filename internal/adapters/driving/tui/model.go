// Package tui provides an interactive terminal view over one project's
// retrieval pipeline: type a question, see the assembled context block
// and its metadata.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/regulaware/dossier-cli/internal/core/domain"
	"github.com/regulaware/dossier-cli/internal/core/ports/driving"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	contextStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// retrievalMsg carries an async retrieval result back into Update.
type retrievalMsg struct {
	result *domain.RetrievalResult
	err    error
}

// Model is the Bubble Tea model for the query view.
type Model struct {
	retrieval driving.RetrievalService
	project   string

	input    textinput.Model
	viewport viewport.Model
	status   string
	querying bool
	ready    bool
}

// New creates the query view for one project.
func New(retrieval driving.RetrievalService, project string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		retrieval: retrieval,
		project:   project,
		input:     ti,
		viewport:  viewport.New(0, 0),
		status:    "Ready.",
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and retrieval-result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := contextStyle.GetFrameSize()
		_, qh := queryStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+project, status, query box, spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-2)
		m.viewport.Height = vh
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.querying {
			query := strings.TrimSpace(m.input.Value())
			if query != "" {
				m.querying = true
				m.status = "Retrieving..."
				return m, m.retrieve(query)
			}
		}

	case retrievalMsg:
		m.querying = false
		if msg.err != nil {
			m.status = errorStyle.Render("Error: " + msg.err.Error())
			return m, nil
		}
		m.viewport.SetContent(msg.result.Context)
		m.viewport.GotoTop()
		m.status = summarise(msg.result.Metadata)
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the query view.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := headerStyle.Render("Dossier") + subtleStyle.Render("  project: "+m.project)
	ctx := contextStyle.Render(m.viewport.View())
	input := queryStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + ctx + "\n" + input + "\n" + status
}

// retrieve runs the retrieval pipeline off the UI loop.
func (m Model) retrieve(query string) tea.Cmd {
	retrieval := m.retrieval
	project := m.project
	return func() tea.Msg {
		result, err := retrieval.Retrieve(context.Background(), project, query, domain.RetrievalOptions{})
		return retrievalMsg{result: result, err: err}
	}
}

// summarise formats the status line shown after a retrieval.
func summarise(meta domain.RetrievalMetadata) string {
	s := fmt.Sprintf("%d procedure + %d context chunks, ~%d tokens",
		meta.ProcedureChunks, meta.ContextChunks, meta.TokenEstimate)
	if meta.Truncated {
		s += " (truncated)"
	}
	if meta.CacheRebuilt {
		s += " (index rebuilt)"
	}
	if len(meta.Sources) > 0 {
		s += "  sources: " + strings.Join(meta.Sources, ", ")
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
