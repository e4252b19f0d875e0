package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/pgokul695/Winterthon/internal/screen"
	"github.com/pgokul695/Winterthon/internal/ui/layout"
)

type fakeScreen struct {
	name   string
	inits  int
	passed []tea.Msg
}

func (s *fakeScreen) Init() tea.Cmd { s.inits++; return nil }
func (s *fakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.passed = append(s.passed, msg)
	return s, nil
}
func (s *fakeScreen) View(int, int) string { return s.name }
func (s *fakeScreen) Frame() layout.Frame  { return layout.Frame{Title: s.name} }

// send runs a navigation command through the router the way the program
// loop would.
func send(r *Router, cmd tea.Cmd) {
	r.Update(cmd())
}

func names(r *Router) []string {
	var out []string
	for _, s := range r.stack {
		out = append(out, s.(*fakeScreen).name)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRouter_Navigation(t *testing.T) {
	picker := &fakeScreen{name: "picker"}
	quiz := &fakeScreen{name: "quiz"}
	score := &fakeScreen{name: "score"}

	r := New(picker)
	r.Init()
	if picker.inits != 1 {
		t.Fatalf("root Init ran %d times", picker.inits)
	}

	send(r, Open(quiz))
	send(r, Swap(score))
	if got := names(r); !equal(got, []string{"picker", "score"}) {
		t.Fatalf("stack after open+swap = %v", got)
	}
	if quiz.inits != 1 || score.inits != 1 {
		t.Fatalf("expected Init on opened and swapped screens, got quiz=%d score=%d", quiz.inits, score.inits)
	}

	send(r, Back())
	if r.Active() != picker || r.Depth() != 1 {
		t.Fatalf("expected to land back on picker, stack = %v", names(r))
	}
}

func TestRouter_BackAtRootIsNoop(t *testing.T) {
	root := &fakeScreen{name: "picker"}
	r := New(root)

	send(r, Back())
	send(r, Back())

	if r.Depth() != 1 || r.Active() != root {
		t.Fatalf("root screen was removed: %v", names(r))
	}
	if len(root.passed) != 0 {
		t.Fatalf("navigation messages leaked to the screen: %v", root.passed)
	}
}

func TestRouter_ForwardsOtherMessages(t *testing.T) {
	root := &fakeScreen{name: "picker"}
	top := &fakeScreen{name: "quiz"}
	r := New(root)
	send(r, Open(top))

	r.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	if len(top.passed) != 1 || len(root.passed) != 0 {
		t.Fatalf("expected only the active screen to see the message, top=%d root=%d", len(top.passed), len(root.passed))
	}
	if r.View(80, 24) != "quiz" {
		t.Fatalf("View = %q", r.View(80, 24))
	}
}

func TestNavMsg_Accessors(t *testing.T) {
	s := &fakeScreen{name: "score"}
	if msg := Swap(s)().(NavMsg); msg.Target() != s || msg.IsBack() {
		t.Fatalf("unexpected swap message %+v", msg)
	}
	if msg := Back()().(NavMsg); !msg.IsBack() || msg.Target() != nil {
		t.Fatalf("unexpected back message %+v", msg)
	}
}
