// Package tui provides the interactive history browser.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avelhart/rewind/internal/appstate"
	"github.com/avelhart/rewind/internal/history"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B"))
)

// refreshMsg asks the model to reload history entries.
type refreshMsg struct{}

// errMsg carries an undo/redo failure into the view.
type errMsg struct {
	err error
}

// BrowserModel is the bubbletea model for the history browser.
type BrowserModel struct {
	mgr     *appstate.Manager
	entries []history.Info

	cursor  int
	width   int
	height  int
	err     error
	message string
}

// NewBrowserModel creates a history browser over the given manager.
func NewBrowserModel(mgr *appstate.Manager) *BrowserModel {
	return &BrowserModel{mgr: mgr}
}

// Init implements tea.Model.
func (m *BrowserModel) Init() tea.Cmd {
	return func() tea.Msg { return refreshMsg{} }
}

// Update implements tea.Model.
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		m.entries = m.mgr.History()
		if m.cursor >= len(m.entries) {
			m.cursor = len(m.entries) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "u":
			return m, m.doUndo()
		case "r":
			return m, m.doRedo()
		}
	}
	return m, nil
}

func (m *BrowserModel) doUndo() tea.Cmd {
	return func() tea.Msg {
		ok, err := m.mgr.Undo(context.Background())
		if err != nil {
			return errMsg{err: err}
		}
		if !ok {
			return errMsg{err: fmt.Errorf("nothing to undo")}
		}
		return refreshMsg{}
	}
}

func (m *BrowserModel) doRedo() tea.Cmd {
	return func() tea.Msg {
		ok, err := m.mgr.Redo(context.Background())
		if err != nil {
			return errMsg{err: err}
		}
		if !ok {
			return errMsg{err: fmt.Errorf("nothing to redo")}
		}
		return refreshMsg{}
	}
}

// View implements tea.Model.
func (m *BrowserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Rewind history"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(mutedStyle.Render("No recorded actions."))
		b.WriteString("\n")
	}

	for i, e := range m.entries {
		line := fmt.Sprintf("%s %s %s",
			e.Timestamp.Format(time.Kitchen),
			categoryStyle.Render(fmt.Sprintf("[%s]", e.Category)),
			e.Description,
		)
		if i == m.cursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("u undo · r redo · j/k move · q quit"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the browser and blocks until the user quits.
func Run(mgr *appstate.Manager) error {
	p := tea.NewProgram(NewBrowserModel(mgr), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
