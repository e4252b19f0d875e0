package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/pgokul695/Winterthon/internal/ui/theme"
)

// IDField is a one-line input for an identifier, with room for a
// problem message underneath.
type IDField struct {
	input   textinput.Model
	problem string
}

// NewIDField returns a focused field that accepts at most limit runes.
func NewIDField(placeholder string, limit int) IDField {
	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Focus()
	return IDField{input: in}
}

func (f IDField) Init() tea.Cmd {
	return f.input.Focus()
}

// Update passes msg to the input. A keypress clears the problem.
func (f IDField) Update(msg tea.Msg) (IDField, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		f.problem = ""
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f IDField) View() string {
	if f.problem == "" {
		return f.input.View()
	}
	return f.input.View() + "\n" + theme.Warning.Render("✗ "+f.problem)
}

// Value is the typed text without surrounding blanks.
func (f IDField) Value() string {
	return strings.TrimSpace(f.input.Value())
}

// Set replaces the text, leaving the cursor at the end.
func (f *IDField) Set(v string) {
	f.input.SetValue(v)
	f.input.CursorEnd()
	f.problem = ""
}

// Submit returns the value, or flags the field and reports false when
// it is blank.
func (f *IDField) Submit() (string, bool) {
	v := f.Value()
	if v == "" {
		f.problem = "enter a batch id"
	}
	return v, v != ""
}

// Reject shows msg under the field until the next keypress.
func (f *IDField) Reject(msg string) {
	f.problem = msg
}
