package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DachengChen/querymaster/chat"
)

// Start opens a session on d and runs the chat UI until the user quits.
func Start(d *chat.Dispatcher, opts Options) error {
	session := chat.NewSession(d, opts.Lang, opts.RowLimit)
	app := NewApp(session, opts)
	p := tea.NewProgram(app, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
