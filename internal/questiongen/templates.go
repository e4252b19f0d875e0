package questiongen

import (
	"fmt"
	"strings"

	"github.com/pgokul695/Winterthon/internal/quiz"
)

// Template is the instruction block for one question type. Every template
// dictates the same four anchors (QUESTION, CORRECT, WRONG, EXPLANATIONS);
// types differ in the task description and the number of wrong answers
// requested.
type Template struct {
	Type         quiz.QuestionType
	Title        string
	Instructions string
	WrongCount   int
}

// DefaultType is used for unrecognized type codes.
const DefaultType = quiz.TypeSingleCorrect

var templates = buildTemplates()

// TemplateFor returns the template for qt, or the default template when qt
// is not a known type.
func TemplateFor(qt quiz.QuestionType) Template {
	if t, ok := templates[qt]; ok {
		return t
	}
	return templates[DefaultType]
}

type templateSpec struct {
	title   string
	task    string
	correct string
	wrong   string
	rules   []string
	wrongN  int
}

func buildTemplates() map[quiz.QuestionType]Template {
	specs := map[quiz.QuestionType]templateSpec{
		quiz.TypeSingleCorrect: {
			title:   "Single correct answer",
			task:    "Create a quiz question about the text above.",
			correct: "The correct answer in 2-5 words",
			wrong:   "wrong answer in 2-5 words",
			wrongN:  3,
		},
		quiz.TypeMultipleChoice: {
			title:   "Multiple choice",
			task:    "Create a multiple choice quiz question about the text above with exactly one correct option.",
			correct: "The correct answer in 2-5 words",
			wrong:   "wrong answer in 2-5 words",
			wrongN:  3,
		},
		quiz.TypeMultipleCorrect: {
			title:   "Multiple correct answers",
			task:    "Create a MULTIPLE-CORRECT question about the text above where the correct answer combines two facts.",
			correct: "The correct answer, naming both correct facts in one line",
			wrong:   "wrong answer",
			rules:   []string{"Each wrong answer must be plausible on its own"},
			wrongN:  2,
		},
		quiz.TypeTrueFalse: {
			title:   "True or false",
			task:    "Create a TRUE/FALSE style question: ask which statement about the text is TRUE.",
			correct: "A short statement that is true according to the text",
			wrong:   "statement that is false according to the text",
			rules:   []string{"False statements must contradict the text, not merely be absent from it"},
			wrongN:  3,
		},
		quiz.TypeFillInBlank: {
			title:   "Fill in the blank",
			task:    "Create a FILL IN THE BLANK question. Write the question with _____ where the answer should go.",
			correct: "The word or phrase that fills the blank",
			wrong:   "word or phrase that does not fit the blank",
			wrongN:  3,
		},
		quiz.TypeNumeric: {
			title:   "Numeric answer",
			task:    "Create a NUMERIC ANSWER question whose answer is a specific number stated in or derived from the text.",
			correct: "The numeric answer",
			wrong:   "incorrect but plausible number",
			rules:   []string{"Write numbers with digits, include units when the text does"},
			wrongN:  3,
		},
		quiz.TypeDescriptive: {
			title:   "Descriptive",
			task:    "Create a DESCRIPTIVE question that asks the reader to explain an idea from the text.",
			correct: "A one or two sentence answer",
			wrong:   "one or two sentence answer that misstates the idea",
			wrongN:  3,
		},
	}

	out := make(map[quiz.QuestionType]Template, len(specs))
	for qt, s := range specs {
		out[qt] = Template{
			Type:         qt,
			Title:        s.title,
			Instructions: renderInstructions(s),
			WrongCount:   s.wrongN,
		}
	}
	return out
}

var ordinals = []string{"First", "Second", "Third", "Fourth"}

func renderInstructions(s templateSpec) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Follow this exact structure:\n\n", s.task)

	b.WriteString("QUESTION:\n[Your question text]\n\n")
	fmt.Fprintf(&b, "CORRECT:\n[%s]\n\n", s.correct)

	b.WriteString("WRONG:\n")
	for i := range s.wrongN {
		fmt.Fprintf(&b, "[%s %s]\n", ordinals[i], s.wrong)
	}

	b.WriteString("\nEXPLANATIONS:\n")
	b.WriteString("CORRECT: [Why this answer is correct]\n")
	for i := range s.wrongN {
		fmt.Fprintf(&b, "WRONG %d: [Why the %s option is wrong]\n", i+1, strings.ToLower(ordinals[i]))
	}

	b.WriteString("\nImportant rules:\n")
	fmt.Fprintf(&b, "- After \"WRONG:\" write %s options on separate lines (no WRONG 1:, WRONG 2: labels)\n",
		strings.ToUpper(countWord(s.wrongN)))
	b.WriteString("- After \"EXPLANATIONS:\" you can use CORRECT: and WRONG 1:, WRONG 2:, WRONG 3: labels\n")
	b.WriteString("- Keep all answer options SHORT\n")
	b.WriteString("- Do NOT use A/B/C/D or 1/2/3/4 prefixes on answers\n")
	b.WriteString("- Do NOT use markdown formatting\n")
	for _, r := range s.rules {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("- Question must be answerable from the text above\n\n")
	b.WriteString("Generate now:")

	return b.String()
}

func countWord(n int) string {
	switch n {
	case 2:
		return "two"
	case 3:
		return "three"
	default:
		return fmt.Sprint(n)
	}
}
