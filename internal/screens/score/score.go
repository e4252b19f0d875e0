// Package score shows the result of a finished quiz.
package score

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/pgokul695/Winterthon/internal/quiz"
	"github.com/pgokul695/Winterthon/internal/router"
	"github.com/pgokul695/Winterthon/internal/screen"
	"github.com/pgokul695/Winterthon/internal/ui/layout"
	"github.com/pgokul695/Winterthon/internal/ui/theme"
)

// Tally counts answers for one question type.
type Tally struct {
	Answered int
	Correct  int
}

// Result is the outcome of one pass through a batch.
type Result struct {
	BatchID string
	Total   int
	Correct int
	ByType  map[quiz.QuestionType]Tally
}

// Record adds one answer to the result.
func (r *Result) Record(qt quiz.QuestionType, correct bool) {
	if r.ByType == nil {
		r.ByType = make(map[quiz.QuestionType]Tally)
	}
	t := r.ByType[qt]
	t.Answered++
	r.Total++
	if correct {
		t.Correct++
		r.Correct++
	}
	r.ByType[qt] = t
}

// Accuracy is the share of correct answers, 0 when nothing was answered.
func (r Result) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// ScoreScreen displays a Result.
type ScoreScreen struct {
	result Result
}

var _ screen.Screen = (*ScoreScreen)(nil)

// New creates a new ScoreScreen.
func New(result Result) *ScoreScreen {
	return &ScoreScreen{result: result}
}

func (s *ScoreScreen) Init() tea.Cmd {
	return nil
}

func (s *ScoreScreen) Frame() layout.Frame {
	return layout.Frame{
		Title:  "Score",
		Status: fmt.Sprintf("%d/%d", s.result.Correct, s.result.Total),
		Hints: []layout.KeyHint{
			{Key: "Enter", Action: "Pick another batch"},
			{Key: "Ctrl+C", Action: "Quit"},
		},
	}
}

func (s *ScoreScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return s, router.Back()
	}
	return s, nil
}

func (s *ScoreScreen) View(width, height int) string {
	res := s.result
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center.Inherit(theme.Brand).Render("Quiz complete!"))
	b.WriteString("\n\n")
	b.WriteString(center.Inherit(theme.Faint).Render("Batch " + res.BatchID))
	b.WriteString("\n\n")
	b.WriteString(center.Inherit(theme.Plain).Render(fmt.Sprintf(
		"Questions: %d        Correct: %d        Accuracy: %.0f%%",
		res.Total, res.Correct, res.Accuracy()*100)))
	b.WriteString("\n\n")

	if len(res.ByType) == 0 {
		return b.String()
	}

	divider := theme.CellAhead.Render(strings.Repeat("─", min(width-8, 48)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Faint.Render("By type")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	for _, qt := range typeOrder(res.ByType) {
		t := res.ByType[qt]
		style := theme.Plain
		if t.Correct == t.Answered {
			style = theme.OptionRight
		}
		line := fmt.Sprintf("%-4s  %d/%d correct", qt, t.Correct, t.Answered)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

// typeOrder lists the known types first, then any others in the order
// they sort.
func typeOrder(by map[quiz.QuestionType]Tally) []quiz.QuestionType {
	out := make([]quiz.QuestionType, 0, len(by))
	for _, qt := range quiz.KnownTypes {
		if _, ok := by[qt]; ok {
			out = append(out, qt)
		}
	}
	var extra []quiz.QuestionType
	for qt := range by {
		if !qt.Known() {
			extra = append(extra, qt)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
