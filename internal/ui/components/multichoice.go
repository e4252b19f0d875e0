package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/pgokul695/Winterthon/internal/quiz"
	"github.com/pgokul695/Winterthon/internal/ui/theme"
)

// OptionLabel returns the display letter for option i: A, B, C, ...
func OptionLabel(i int) string {
	return string(rune('A' + i))
}

// MultiChoice is a single-answer selector over a question's options.
// After submission it reveals the correct option and the explanations
// of the chosen and correct options.
type MultiChoice struct {
	Question    string
	Options     []quiz.Option
	Selected    int
	Submitted   bool
	ChosenIndex int
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(question string, options []quiz.Option) MultiChoice {
	return MultiChoice{
		Question:    question,
		Options:     options,
		ChosenIndex: -1,
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles arrow navigation, letter shortcuts and enter.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.Submitted = true
		m.ChosenIndex = m.Selected
	default:
		if len(key) == 1 {
			i := int(strings.ToUpper(key)[0]) - 'A'
			if i >= 0 && i < len(m.Options) {
				m.Selected = i
			}
		}
	}

	return m, nil
}

// View renders the question, its options and, once submitted, the
// explanations.
func (m MultiChoice) View(width int) string {
	wrap := lipgloss.NewStyle().Width(max(width, 20))
	var b strings.Builder

	b.WriteString(wrap.Inherit(theme.Question).Render(m.Question))
	b.WriteString("\n\n")

	correct := m.CorrectIndex()
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, OptionLabel(i), opt.Text)

		style := theme.OptionIdle
		switch {
		case m.Submitted && i == correct:
			style = theme.OptionRight
		case m.Submitted && i == m.ChosenIndex:
			style = theme.OptionWrong
		case m.Submitted:
			style = theme.OptionFaded
		case i == m.Selected:
			style = theme.OptionCursor
		}
		b.WriteString(wrap.Inherit(style).Render(line))
		b.WriteString("\n")
	}

	if !m.Submitted {
		return b.String()
	}

	b.WriteString("\n")
	if m.IsCorrect() {
		b.WriteString(theme.OptionRight.Render("Correct!"))
	} else {
		b.WriteString(theme.OptionWrong.Render("Not quite"))
		if m.ChosenIndex >= 0 && m.ChosenIndex < len(m.Options) {
			b.WriteString(explanationLine(wrap, OptionLabel(m.ChosenIndex), m.Options[m.ChosenIndex]))
		}
	}
	if correct >= 0 {
		b.WriteString(explanationLine(wrap, OptionLabel(correct), m.Options[correct]))
	}
	b.WriteString("\n")

	return b.String()
}

func explanationLine(wrap lipgloss.Style, label string, opt quiz.Option) string {
	if opt.Explanation == "" {
		return ""
	}
	return "\n\n" + wrap.Inherit(theme.Explanation).Render(fmt.Sprintf("%s) %s", label, opt.Explanation))
}

// CorrectIndex returns the index of the correct option, or -1.
func (m MultiChoice) CorrectIndex() int {
	for i, o := range m.Options {
		if o.Correct {
			return i
		}
	}
	return -1
}

// IsCorrect returns true if the user chose the correct answer.
func (m MultiChoice) IsCorrect() bool {
	return m.Submitted && m.ChosenIndex >= 0 && m.ChosenIndex == m.CorrectIndex()
}
