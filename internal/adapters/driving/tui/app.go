package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/regulaware/dossier-cli/internal/core/ports/driving"
)

// Run starts the interactive query view and blocks until the user quits.
func Run(retrieval driving.RetrievalService, project string) error {
	p := tea.NewProgram(New(retrieval, project), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
