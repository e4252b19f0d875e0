package questiongen

import (
	"fmt"
	"strings"

	"github.com/pgokul695/Winterthon/internal/quiz"
)

const (
	textStartDelimiter = "===== TEXT TO CREATE QUESTION FROM ====="
	textEndDelimiter   = "===== END OF TEXT (Do not use anything below to generate questions from) ====="
)

// BuildPrompt renders the prompt for one attempt: the source text between
// the delimiter lines, the questions already generated in this batch, and
// the instruction block of qt's template. Unknown types use the default
// template.
func BuildPrompt(qt quiz.QuestionType, sourceText string, previous []string) string {
	var b strings.Builder
	writePreamble(&b, sourceText, previous)
	b.WriteString(TemplateFor(qt).Instructions)
	return b.String()
}

// BuildJSONPrompt is BuildPrompt for the JSON completion format: the same
// preamble followed by an instruction to answer with a single JSON object.
func BuildJSONPrompt(qt quiz.QuestionType, sourceText string, previous []string) string {
	t := TemplateFor(qt)

	var b strings.Builder
	writePreamble(&b, sourceText, previous)

	fmt.Fprintf(&b, "Create one %s quiz question about the text above.\n\n", strings.ToLower(t.Title))
	b.WriteString("Respond with ONLY a JSON object of this shape:\n")
	b.WriteString(jsonShapeExample)
	fmt.Fprintf(&b, "\n\nRules:\n- incorrectLotItems must contain exactly %d items\n", t.WrongCount)
	b.WriteString("- Keep answer texts SHORT\n")
	b.WriteString("- Do NOT wrap the JSON in markdown\n")
	b.WriteString("- Question must be answerable from the text above")

	return b.String()
}

const jsonShapeExample = `{
  "question": {"text": "..."},
  "solution": {
    "correctLotItem": {"text": "...", "explanation": "..."},
    "incorrectLotItems": [
      {"text": "...", "explanation": "..."}
    ]
  }
}`

func writePreamble(b *strings.Builder, sourceText string, previous []string) {
	b.WriteString(textStartDelimiter)
	b.WriteByte('\n')
	b.WriteString(sourceText)
	b.WriteByte('\n')
	b.WriteString(textEndDelimiter)
	b.WriteString("\n\n")

	if len(previous) > 0 {
		b.WriteString("\nALREADY GENERATED QUESTIONS:\n")
		b.WriteString(buildDedup(previous))
		b.WriteString("\n\nIMPORTANT: Do NOT generate any question similar to the above.\n")
		b.WriteString("Create a COMPLETELY DIFFERENT question about a DIFFERENT topic from the text.\n")
		b.WriteString("Do NOT repeat or rephrase the questions listed above.\n\n")
	}
}

// buildDedup formats prior questions as a 1-based numbered list.
func buildDedup(previous []string) string {
	var b strings.Builder
	for i, q := range previous {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
