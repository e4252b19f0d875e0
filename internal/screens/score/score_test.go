package score

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/pgokul695/Winterthon/internal/quiz"
	"github.com/pgokul695/Winterthon/internal/router"
)

func testResult() Result {
	var r Result
	r.BatchID = "0192f3a1-batch"
	r.Record(quiz.TypeTrueFalse, true)
	r.Record(quiz.TypeSingleCorrect, true)
	r.Record(quiz.TypeSingleCorrect, false)
	r.Record("XYZ", false)
	return r
}

func TestResult_Record(t *testing.T) {
	r := testResult()
	if r.Total != 4 || r.Correct != 2 {
		t.Fatalf("total/correct = %d/%d, want 4/2", r.Total, r.Correct)
	}
	if got := r.ByType[quiz.TypeSingleCorrect]; got != (Tally{Answered: 2, Correct: 1}) {
		t.Errorf("SOL tally = %+v", got)
	}
	if r.Accuracy() != 0.5 {
		t.Errorf("Accuracy = %v, want 0.5", r.Accuracy())
	}
	if (Result{}).Accuracy() != 0 {
		t.Error("empty result should have zero accuracy")
	}
}

func TestTypeOrder(t *testing.T) {
	got := typeOrder(testResult().ByType)
	want := []quiz.QuestionType{quiz.TypeSingleCorrect, quiz.TypeTrueFalse, "XYZ"}
	if len(got) != len(want) {
		t.Fatalf("typeOrder = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("typeOrder[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScoreScreen_View(t *testing.T) {
	s := New(testResult())
	if f := s.Frame(); f.Title != "Score" || f.Status != "2/4" {
		t.Errorf("Frame = %+v", f)
	}
	view := s.View(90, 24)
	for _, want := range []string{"Quiz complete!", "Accuracy: 50%", "SOL", "1/2 correct", "0192f3a1-batch"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestScoreScreen_EnterPops(t *testing.T) {
	s := New(testResult())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	if nav, ok := cmd().(router.NavMsg); !ok || !nav.IsBack() {
		t.Errorf("expected a Back navigation")
	}
}
