package questiongen

import (
	"fmt"
	"strings"
)

// Section names reported by MissingSectionError.
const (
	SectionQuestion = "QUESTION"
	SectionCorrect  = "CORRECT"
	SectionWrong    = "WRONG"
)

// MinWrongAnswers is the number of wrong answers a completion must carry.
const MinWrongAnswers = 3

// MissingSectionError means a mandatory anchor was absent or empty.
type MissingSectionError struct {
	Section string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("could not find %s section in completion", e.Section)
}

// InsufficientWrongAnswersError means fewer than MinWrongAnswers usable
// wrong-answer lines were found.
type InsufficientWrongAnswersError struct {
	Found      int
	Candidates []string
}

func (e *InsufficientWrongAnswersError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("expected at least %d wrong answers, found %d", MinWrongAnswers, e.Found)
	}
	return fmt.Sprintf("expected at least %d wrong answers, found %d: %s",
		MinWrongAnswers, e.Found, strings.Join(e.Candidates, ", "))
}

// ModelCallError wraps a failure of the model call for one attempt.
type ModelCallError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ModelCallError) Error() string {
	return fmt.Sprintf("%s model %q: %v", e.Provider, e.Model, e.Err)
}

func (e *ModelCallError) Unwrap() error { return e.Err }

// FieldError is one invalid field of a batch request.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// InvalidRequestError rejects a whole batch before any attempt is made.
type InvalidRequestError struct {
	Fields []FieldError
}

func (e *InvalidRequestError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid request"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}
