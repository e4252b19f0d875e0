// Package app hosts the terminal quiz runner.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/pgokul695/Winterthon/internal/router"
	"github.com/pgokul695/Winterthon/internal/screens/picker"
	"github.com/pgokul695/Winterthon/internal/store"
	"github.com/pgokul695/Winterthon/internal/ui/layout"
)

// Options configures the quiz runner.
type Options struct {
	// Logs is the batch log the quizzes are read from.
	Logs store.BatchLogRepo

	// BatchID preselects a batch; empty means the newest.
	BatchID string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	return AppModel{
		router: router.New(picker.New(opts.Logs, opts.BatchID)),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, router.Back()
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	switch {
	case m.width == 0 || m.height == 0:
		return ""
	case !layout.Fits(m.width, m.height):
		return layout.TooSmall(m.width, m.height)
	}
	return m.router.Active().Frame().Render(m.router.View, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
