// Package picker asks which logged batch to take as a quiz.
package picker

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	qz "github.com/pgokul695/Winterthon/internal/quiz"
	"github.com/pgokul695/Winterthon/internal/router"
	"github.com/pgokul695/Winterthon/internal/screen"
	quizscreen "github.com/pgokul695/Winterthon/internal/screens/quiz"
	"github.com/pgokul695/Winterthon/internal/store"
	"github.com/pgokul695/Winterthon/internal/ui/components"
	"github.com/pgokul695/Winterthon/internal/ui/layout"
	"github.com/pgokul695/Winterthon/internal/ui/theme"
)

// recentLimit caps the batches listed under the input.
const recentLimit = 8

// recordsLoadedMsg carries the batch log, newest first.
type recordsLoadedMsg struct {
	Records []qz.BatchLogRecord
	Err     error
}

// batchOpenedMsg carries the batch looked up for the typed id.
type batchOpenedMsg struct {
	ID     string
	Record *qz.BatchLogRecord
	Err    error
}

// PickerScreen shows an id input prefilled with the newest batch.
type PickerScreen struct {
	logs    store.BatchLogRepo
	input   components.IDField
	records []qz.BatchLogRecord
	cursor  int
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*PickerScreen)(nil)

// New creates a picker over logs. A non-empty batchID is used instead of
// the newest batch.
func New(logs store.BatchLogRepo, batchID string) *PickerScreen {
	input := components.NewIDField("batch id", 64)
	if batchID != "" {
		input.Set(batchID)
	}
	return &PickerScreen{logs: logs, input: input}
}

func (s *PickerScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), s.load())
}

func (s *PickerScreen) Frame() layout.Frame {
	f := layout.Frame{
		Title: "Pick a batch",
		Hints: []layout.KeyHint{
			{Key: "↑↓", Action: "Recent batches"},
			{Key: "Enter", Action: "Start quiz"},
			{Key: "Ctrl+C", Action: "Quit"},
		},
	}
	if s.loaded && s.errMsg == "" {
		f.Status = fmt.Sprintf("%d logged", len(s.records))
	}
	return f
}

func (s *PickerScreen) load() tea.Cmd {
	logs := s.logs
	return func() tea.Msg {
		recs, err := logs.List(context.Background())
		if err != nil {
			return recordsLoadedMsg{Err: err}
		}
		newest := make([]qz.BatchLogRecord, 0, len(recs))
		for i := len(recs) - 1; i >= 0; i-- {
			newest = append(newest, recs[i])
		}
		return recordsLoadedMsg{Records: newest}
	}
}

func (s *PickerScreen) open(id string) tea.Cmd {
	logs := s.logs
	return func() tea.Msg {
		rec, err := logs.FindByID(context.Background(), id)
		return batchOpenedMsg{ID: id, Record: rec, Err: err}
	}
}

func (s *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.records = msg.Records
		if s.input.Value() == "" && len(s.records) > 0 {
			s.input.Set(s.records[0].ID)
		}
		return s, nil

	case batchOpenedMsg:
		switch {
		case msg.Err != nil:
			s.input.Reject(msg.Err.Error())
		case msg.Record == nil:
			s.input.Reject(fmt.Sprintf("no batch with id %q", msg.ID))
		case msg.Record.QuestionsGenerated == 0 || len(msg.Record.Questions) == 0:
			s.input.Reject("that batch has no questions")
		default:
			return s, router.Open(quizscreen.New(msg.Record))
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			id, ok := s.input.Submit()
			if !ok {
				return s, nil
			}
			return s, s.open(id)
		case "up":
			s.moveCursor(-1)
			return s, nil
		case "down":
			s.moveCursor(1)
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// moveCursor steps through the listed batches, wrapping at either end,
// and copies the selected id into the input.
func (s *PickerScreen) moveCursor(delta int) {
	n := min(len(s.records), recentLimit)
	if n == 0 {
		return
	}
	s.cursor = (s.cursor + delta + n) % n
	s.input.Set(s.records[s.cursor].ID)
}

func (s *PickerScreen) View(width, height int) string {
	inner := min(width-8, 90)
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.Heading.Width(inner).Render("Which batch do you want to practise?"))
	b.WriteString("\n\n")
	b.WriteString(s.input.View())
	b.WriteString("\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(theme.Warning.Render("Could not read the batch log: " + s.errMsg))
	case !s.loaded:
		b.WriteString(theme.Note.Render("Loading batches..."))
	case len(s.records) == 0:
		b.WriteString(theme.Note.Render("No batches logged yet. Generate some questions first."))
	default:
		b.WriteString(theme.Faint.Render("Recent batches"))
		b.WriteString("\n")
		for i, rec := range s.records[:min(len(s.records), recentLimit)] {
			line := fmt.Sprintf("%s  %s  %2d questions  %s/%s",
				rec.ID, rec.Timestamp.Local().Format("Jan 02 15:04"), rec.QuestionsGenerated, rec.Mode, rec.Model)
			style := theme.OptionIdle
			if i == s.cursor && s.input.Value() == rec.ID {
				style = theme.OptionCursor
			}
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(inner).Render(b.String()))
}
