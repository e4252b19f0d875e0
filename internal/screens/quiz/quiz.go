// Package quiz runs the reader through the questions of one logged batch.
package quiz

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	qz "github.com/pgokul695/Winterthon/internal/quiz"
	"github.com/pgokul695/Winterthon/internal/router"
	"github.com/pgokul695/Winterthon/internal/screen"
	"github.com/pgokul695/Winterthon/internal/screens/score"
	"github.com/pgokul695/Winterthon/internal/ui/components"
	"github.com/pgokul695/Winterthon/internal/ui/layout"
	"github.com/pgokul695/Winterthon/internal/ui/theme"
)

// QuizScreen asks each question of a batch in order.
type QuizScreen struct {
	batchID   string
	questions []qz.GeneratedQuestion
	index     int
	mc        components.MultiChoice
	outcomes  []components.Outcome
	result    score.Result
}

var _ screen.Screen = (*QuizScreen)(nil)

// New creates a quiz over the questions of rec. Questions without
// options are skipped.
func New(rec *qz.BatchLogRecord) *QuizScreen {
	s := &QuizScreen{
		batchID: rec.ID,
		result:  score.Result{BatchID: rec.ID},
	}
	for _, gq := range rec.Questions {
		if len(gq.Options) > 0 {
			s.questions = append(s.questions, gq)
		}
	}
	s.outcomes = make([]components.Outcome, len(s.questions))
	if len(s.questions) > 0 {
		s.mc = newChoice(s.questions[0])
	}
	return s
}

func newChoice(gq qz.GeneratedQuestion) components.MultiChoice {
	return components.NewMultiChoice(gq.QuestionText, gq.Options)
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Frame() layout.Frame {
	f := layout.Frame{
		Title:  "Quiz",
		Status: fmt.Sprintf("%d/%d  ✓ %d", min(s.index+1, len(s.questions)), len(s.questions), s.result.Correct),
	}
	if s.mc.Submitted {
		f.Hints = []layout.KeyHint{
			{Key: "Enter", Action: "Next"},
			{Key: "Esc", Action: "Quit quiz"},
		}
	} else {
		f.Hints = []layout.KeyHint{
			{Key: "↑↓/A-D", Action: "Choose"},
			{Key: "Enter", Action: "Submit"},
			{Key: "Esc", Action: "Quit quiz"},
		}
	}
	return f
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(s.questions) == 0 {
		return s, nil
	}

	if s.mc.Submitted {
		if kmsg.String() == "enter" || kmsg.String() == "space" {
			return s, s.next()
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.mc, cmd = s.mc.Update(msg)
	if s.mc.Submitted {
		right := s.mc.IsCorrect()
		s.result.Record(s.current().QuestionType, right)
		s.outcomes[s.index] = components.AnsweredWrong
		if right {
			s.outcomes[s.index] = components.AnsweredRight
		}
	}
	return s, cmd
}

func (s *QuizScreen) current() qz.GeneratedQuestion {
	return s.questions[s.index]
}

// next advances to the following question, or hands over to the score
// screen after the last one.
func (s *QuizScreen) next() tea.Cmd {
	s.index++
	if s.index >= len(s.questions) {
		return router.Swap(score.New(s.result))
	}
	s.mc = newChoice(s.current())
	return nil
}

// Result returns the answers recorded so far.
func (s *QuizScreen) Result() score.Result {
	return s.result
}

func (s *QuizScreen) View(width, height int) string {
	if len(s.questions) == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Inherit(theme.Warning).
			Render("\n\n\n  This batch has no questions.\n\n  Press Esc to go back.")
	}

	inner := min(width-8, 90)
	var b strings.Builder
	b.WriteString("\n")

	track := components.Track{Outcomes: s.outcomes, Current: s.index}
	b.WriteString(track.View(inner))
	b.WriteString("\n")
	b.WriteString(theme.Note.Render(typeName(s.current().QuestionType)))
	b.WriteString("\n\n")
	b.WriteString(s.mc.View(inner))

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func typeName(qt qz.QuestionType) string {
	switch qt {
	case qz.TypeSingleCorrect:
		return "Single correct answer"
	case qz.TypeMultipleChoice:
		return "Multiple choice"
	case qz.TypeMultipleCorrect:
		return "Multiple correct"
	case qz.TypeTrueFalse:
		return "True or false"
	case qz.TypeFillInBlank:
		return "Fill in the blank"
	case qz.TypeNumeric:
		return "Numerical answer"
	case qz.TypeDescriptive:
		return "Descriptive"
	}
	return string(qt)
}
