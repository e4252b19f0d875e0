package questiongen

import (
	"errors"
	"strings"
	"testing"

	"github.com/pgokul695/Winterthon/internal/quiz"
)

func TestBatchRequestValidate(t *testing.T) {
	valid := BatchRequest{
		SourceText:    sampleText,
		QuestionTypes: map[quiz.QuestionType]int{quiz.TypeSingleCorrect: 2, "XYZ": 1},
		Model:         quiz.ModelSelector{Provider: "ollama"},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	zero := valid
	zero.QuestionTypes = map[quiz.QuestionType]int{quiz.TypeSingleCorrect: 0}
	if err := zero.Validate(); err != nil {
		t.Errorf("all-zero counts are valid: %v", err)
	}

	bad := BatchRequest{QuestionTypes: map[quiz.QuestionType]int{"": 1}}
	err := bad.Validate()
	var invalid *InvalidRequestError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidRequestError, got %v", err)
	}

	rules := map[string]string{}
	for _, f := range invalid.Fields {
		rules[f.Field] = f.Rule
	}
	if rules["transcript"] != "notblank" {
		t.Errorf("transcript rule = %q", rules["transcript"])
	}
	if rules["model.mode"] != "required" {
		t.Errorf("mode rule = %q", rules["model.mode"])
	}
	if len(invalid.Fields) != 3 {
		t.Errorf("expected 3 field errors, got %+v", invalid.Fields)
	}
	if !strings.Contains(err.Error(), "transcript is required") {
		t.Errorf("error message = %q", err.Error())
	}
}

func TestBatchRequestValidate_CountBounds(t *testing.T) {
	base := BatchRequest{
		SourceText: sampleText,
		Model:      quiz.ModelSelector{Provider: "ollama"},
	}

	tests := []struct {
		name   string
		counts map[quiz.QuestionType]int
		rule   string
	}{
		{"at cap", map[quiz.QuestionType]int{quiz.TypeSingleCorrect: 50}, ""},
		{"over cap", map[quiz.QuestionType]int{quiz.TypeSingleCorrect: 1000000000}, "lte"},
		{"negative", map[quiz.QuestionType]int{quiz.TypeSingleCorrect: -1}, "gte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			req.QuestionTypes = tt.counts
			err := req.Validate()
			if tt.rule == "" {
				if err != nil {
					t.Fatalf("expected valid request, got %v", err)
				}
				return
			}

			var invalid *InvalidRequestError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidRequestError, got %v", err)
			}
			if len(invalid.Fields) != 1 {
				t.Fatalf("expected one field error, got %+v", invalid.Fields)
			}
			f := invalid.Fields[0]
			if f.Field != "questionTypes[SOL]" || f.Rule != tt.rule {
				t.Errorf("field error = %+v", f)
			}
		})
	}
}
