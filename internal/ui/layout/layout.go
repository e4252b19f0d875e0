// Package layout draws the header and footer around the active screen.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/pgokul695/Winterthon/internal/ui/theme"
)

// Smallest terminal the quiz is drawn in. Option explanations wrap badly
// below this.
const (
	MinWidth  = 72
	MinHeight = 20
)

// KeyHint is one "key action" pair in the footer.
type KeyHint struct {
	Key    string
	Action string
}

// Frame is the chrome a screen asks to be drawn in.
type Frame struct {
	Title  string
	Status string
	Hints  []KeyHint
}

// Fits reports whether a width x height terminal can hold a frame.
func Fits(width, height int) bool {
	return width >= MinWidth && height >= MinHeight
}

// TooSmall is shown instead of the frame when the terminal does not fit.
func TooSmall(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(theme.Warning.Render("Window too small") + "\n\n" +
			theme.Faint.Render(fmt.Sprintf("need %dx%d, have %dx%d", MinWidth, MinHeight, width, height)))
}

// Render draws the header and footer and fills the space between them
// with body, which is called with the size left over.
func (f Frame) Render(body func(width, height int) string, width, height int) string {
	header := f.header(width)
	footer := f.footer(width)

	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := lipgloss.NewStyle().
		Width(width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(body(width, bodyHeight))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

// header puts the brand on the left, the title in the middle and the
// status on the right.
func (f Frame) header(width int) string {
	brand := theme.Brand.Render("Winterthon")
	title := theme.Plain.Render(f.Title)
	status := theme.Status.Render(f.Status)

	inner := max(width-4, 0)
	side := max((inner-lipgloss.Width(title))/2, lipgloss.Width(brand)+1)
	left := lipgloss.NewStyle().Width(side).Render(brand)
	right := lipgloss.NewStyle().
		Width(max(inner-side-lipgloss.Width(title), 0)).
		Align(lipgloss.Right).
		Render(status)

	return theme.Bar.Width(width).Render(" " + left + title + right)
}

func (f Frame) footer(width int) string {
	parts := make([]string, len(f.Hints))
	for i, h := range f.Hints {
		parts[i] = theme.Key.Render(h.Key) + " " + theme.KeyFor.Render(h.Action)
	}
	return theme.Bar.Width(width).Render(" " + strings.Join(parts, theme.KeyFor.Render("  ·  ")))
}
