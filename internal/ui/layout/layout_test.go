package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestFits(t *testing.T) {
	if !Fits(MinWidth, MinHeight) {
		t.Error("minimum size should fit")
	}
	if Fits(MinWidth-1, MinHeight) || Fits(MinWidth, MinHeight-1) {
		t.Error("below minimum should not fit")
	}
	if !strings.Contains(TooSmall(40, 10), "have 40x10") {
		t.Error("expected the current size in the warning")
	}
}

func TestFrame_Render(t *testing.T) {
	f := Frame{
		Title:  "Quiz",
		Status: "3/10",
		Hints:  []KeyHint{{Key: "Enter", Action: "Submit"}},
	}

	var gotW, gotH int
	out := f.Render(func(w, h int) string {
		gotW, gotH = w, h
		return "body"
	}, 80, 24)

	for _, want := range []string{"Winterthon", "Quiz", "3/10", "Enter", "Submit", "body"} {
		if !strings.Contains(out, want) {
			t.Errorf("frame is missing %q", want)
		}
	}
	if gotW != 80 || gotH <= 0 || gotH >= 24 {
		t.Errorf("body got %dx%d", gotW, gotH)
	}
	if h := lipgloss.Height(out); h != 24 {
		t.Errorf("frame height = %d, want 24", h)
	}
}
