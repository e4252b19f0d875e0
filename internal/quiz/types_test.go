package quiz

import (
	"strings"
	"testing"
)

func TestTruncateTranscript(t *testing.T) {
	short := "a short transcript"
	if got := TruncateTranscript(short); got != short {
		t.Fatalf("expected unchanged text, got %q", got)
	}

	exact := strings.Repeat("x", TranscriptPreviewLen)
	if got := TruncateTranscript(exact); got != exact {
		t.Fatalf("text of exactly %d chars should not be truncated", TranscriptPreviewLen)
	}

	long := strings.Repeat("y", TranscriptPreviewLen+20)
	got := TruncateTranscript(long)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis, got suffix %q", got[len(got)-5:])
	}
	if len([]rune(got)) != TranscriptPreviewLen+3 {
		t.Fatalf("expected %d runes, got %d", TranscriptPreviewLen+3, len([]rune(got)))
	}
}

func TestTruncateTranscript_MultiByte(t *testing.T) {
	long := strings.Repeat("é", TranscriptPreviewLen+1)
	got := TruncateTranscript(long)
	if got != strings.Repeat("é", TranscriptPreviewLen)+"..." {
		t.Fatal("truncation should cut on rune boundaries")
	}
}

func TestQuestionTypeKnown(t *testing.T) {
	for _, qt := range KnownTypes {
		if !qt.Known() {
			t.Errorf("%s should be known", qt)
		}
	}
	if QuestionType("XYZ").Known() {
		t.Error("XYZ should not be known")
	}
}

func TestCorrectIndex(t *testing.T) {
	q := GeneratedQuestion{Options: []Option{{Text: "a"}, {Text: "b", Correct: true}, {Text: "c"}, {Text: "d"}}}
	if q.CorrectIndex() != 1 {
		t.Fatalf("expected 1, got %d", q.CorrectIndex())
	}
	if (GeneratedQuestion{}).CorrectIndex() != -1 {
		t.Fatal("expected -1 for no options")
	}
}
