package questiongen

import (
	"strings"

	"github.com/pgokul695/Winterthon/internal/llm"
	"github.com/pgokul695/Winterthon/internal/quiz"
)

// Format selects the completion grammar a Generator asks for.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var lotItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"text":         map[string]any{"type": "string"},
		"explanation":  map[string]any{"type": "string"},
		"explaination": map[string]any{"type": "string"},
	},
	"required": []any{"text"},
}

// LotQuestionSchema describes the JSON completion format: a question with
// one correct and several incorrect answer items.
var LotQuestionSchema = &llm.Schema{
	Name:        "lot-question",
	Description: "A comprehension question with one correct and several incorrect answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{"type": "string"},
				},
				"required": []any{"text"},
			},
			"solution": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"correctLotItem": lotItemSchema,
					"incorrectLotItems": map[string]any{
						"type":  "array",
						"items": lotItemSchema,
					},
				},
				"required": []any{"correctLotItem", "incorrectLotItems"},
			},
		},
		"required": []any{"question", "solution"},
	},
}

type lotDocument struct {
	Question struct {
		Text string `json:"text"`
	} `json:"question"`
	Solution struct {
		Correct   lotItem   `json:"correctLotItem"`
		Incorrect []lotItem `json:"incorrectLotItems"`
	} `json:"solution"`
}

type lotItem struct {
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
	// Misspelled key emitted by older prompts and some models.
	Explaination string `json:"explaination"`
}

func (it lotItem) explanation() string {
	if e := strings.TrimSpace(it.Explanation); e != "" {
		return e
	}
	return strings.TrimSpace(it.Explaination)
}

// ParseJSON recovers a question from a completion in the JSON format.
// Fences and prose around the object are ignored. Failures use the same
// error types as Parse, plus *llm.ErrInvalidResponse for documents that
// do not match LotQuestionSchema.
func ParseJSON(raw string) (*quiz.ParsedQuestion, error) {
	doc := extractJSONObject(stripFences(raw))
	if doc == "" {
		return nil, &MissingSectionError{Section: SectionQuestion}
	}

	var lot lotDocument
	if err := llm.Conform(LotQuestionSchema, doc, &lot); err != nil {
		return nil, err
	}

	question := collapse(lot.Question.Text)
	if question == "" {
		return nil, &MissingSectionError{Section: SectionQuestion}
	}
	correct := cleanLine(lot.Solution.Correct.Text)
	if correct == "" {
		return nil, &MissingSectionError{Section: SectionCorrect}
	}

	var wrong []string
	var wrongExp []string
	for _, it := range lot.Solution.Incorrect {
		if t := cleanLine(it.Text); t != "" {
			wrong = append(wrong, t)
			wrongExp = append(wrongExp, it.explanation())
		}
	}
	if len(wrong) < MinWrongAnswers {
		return nil, &InsufficientWrongAnswersError{Found: len(wrong), Candidates: wrong}
	}

	pq := &quiz.ParsedQuestion{
		Question:     question,
		Correct:      correct,
		Wrong:        wrong[:MinWrongAnswers:MinWrongAnswers],
		Explanations: DefaultExplanations(),
	}
	if e := lot.Solution.Correct.explanation(); e != "" {
		pq.Explanations[0] = e
	}
	for i := 0; i < MinWrongAnswers; i++ {
		if wrongExp[i] != "" {
			pq.Explanations[i+1] = wrongExp[i]
		}
	}
	return pq, nil
}

// extractJSONObject returns the text from the first '{' to the last '}'.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
