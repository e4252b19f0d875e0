package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/pgokul695/Winterthon/internal/ui/theme"
)

// Outcome is how one question of a quiz run went.
type Outcome int

const (
	Unanswered Outcome = iota
	AnsweredRight
	AnsweredWrong
)

// Track shows a quiz run as one cell per question: answered questions in
// the right or wrong colour, the current one highlighted, the rest dim.
// Runs too long for the width collapse to a counter.
type Track struct {
	Outcomes []Outcome
	Current  int
}

const (
	cellRight   = "●"
	cellWrong   = "●"
	cellCurrent = "◆"
	cellAhead   = "○"
)

// View renders the track within width columns.
func (t Track) View(width int) string {
	n := len(t.Outcomes)
	label := fmt.Sprintf("Question %d of %d", min(t.Current+1, n), n)
	right := 0
	for _, o := range t.Outcomes {
		if o == AnsweredRight {
			right++
		}
	}
	score := theme.Faint.Render(fmt.Sprintf("%d right", right))

	cellsWidth := 2*n - 1
	if n == 0 || lipgloss.Width(label)+cellsWidth+lipgloss.Width(score)+4 > width {
		return theme.Plain.Render(label) + "  " + score
	}

	cells := make([]string, n)
	for i, o := range t.Outcomes {
		switch {
		case o == AnsweredRight:
			cells[i] = theme.CellRight.Render(cellRight)
		case o == AnsweredWrong:
			cells[i] = theme.CellWrong.Render(cellWrong)
		case i == t.Current:
			cells[i] = theme.CellCurrent.Render(cellCurrent)
		default:
			cells[i] = theme.CellAhead.Render(cellAhead)
		}
	}
	return theme.Plain.Render(label) + "  " + strings.Join(cells, " ") + "  " + score
}
