// Package screen defines what the router stacks.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/pgokul695/Winterthon/internal/ui/layout"
)

// Screen is one page of the quiz runner.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the area between header and footer.
	View(width, height int) string

	// Frame is read on every redraw, so it can follow the screen's state.
	Frame() layout.Frame
}
