// Package quiz holds the question and batch-log records shared by the
// generator, the log stores, the HTTP API and the terminal quiz.
package quiz

import "time"

// QuestionType is the short code that selects an instruction template.
type QuestionType string

const (
	TypeSingleCorrect   QuestionType = "SOL" // single correct option
	TypeMultipleChoice  QuestionType = "MCQ"
	TypeMultipleCorrect QuestionType = "SML"
	TypeTrueFalse       QuestionType = "TF"
	TypeFillInBlank     QuestionType = "FIB"
	TypeNumeric         QuestionType = "NAT"
	TypeDescriptive     QuestionType = "DES"
)

// KnownTypes lists the question types in canonical generation order.
var KnownTypes = []QuestionType{
	TypeSingleCorrect,
	TypeMultipleChoice,
	TypeMultipleCorrect,
	TypeTrueFalse,
	TypeFillInBlank,
	TypeNumeric,
	TypeDescriptive,
}

// Known reports whether t is one of the fixed question types.
func (t QuestionType) Known() bool {
	for _, k := range KnownTypes {
		if k == t {
			return true
		}
	}
	return false
}

// ModelSelector picks the provider ("mode") and model for a batch. An
// empty Name selects the provider's default model.
type ModelSelector struct {
	Provider string `json:"mode" validate:"required"`
	Name     string `json:"model"`
}

// ParsedQuestion is the structure recovered from one model completion.
type ParsedQuestion struct {
	Question string `json:"question"`
	Correct  string `json:"correct"`

	// Wrong holds exactly three distractors, in completion order.
	Wrong []string `json:"wrong"`

	// Explanations are aligned as [correct, wrong1, wrong2, wrong3].
	Explanations [4]string `json:"explanations"`
}

// Option is one answer choice shown to the reader.
type Option struct {
	Text        string `json:"text"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
}

// GeneratedQuestion is a parsed question with its options in display order.
type GeneratedQuestion struct {
	QuestionText   string          `json:"questionText"`
	Options        []Option        `json:"options"`
	Solution       string          `json:"solution"`
	QuestionType   QuestionType    `json:"questionType"`
	ElapsedSeconds float64         `json:"timeTaken"`
	RawOutput      string          `json:"rawOutput,omitempty"`
	ParsedData     *ParsedQuestion `json:"parsedData,omitempty"`
}

// CorrectIndex returns the index of the correct option, or -1.
func (q GeneratedQuestion) CorrectIndex() int {
	for i, o := range q.Options {
		if o.Correct {
			return i
		}
	}
	return -1
}

// PromptLogEntry records one generation attempt, successful or not.
type PromptLogEntry struct {
	QuestionType   QuestionType `json:"questionType"`
	Prompt         string       `json:"prompt"`
	Response       string       `json:"response"`
	ElapsedSeconds float64      `json:"timeTaken"`
	Error          string       `json:"error,omitempty"`
}

// Failed reports whether the attempt produced no question.
func (e PromptLogEntry) Failed() bool {
	return e.Error != ""
}

// OriginKind says where the source text came from.
type OriginKind string

const (
	OriginText    OriginKind = "text"
	OriginPDF     OriginKind = "pdf"
	OriginYouTube OriginKind = "youtube"
)

// Origin describes the source of a batch's text.
type Origin struct {
	Kind      OriginKind `json:"kind"`
	FileName  string     `json:"fileName,omitempty"`
	VideoID   string     `json:"videoId,omitempty"`
	Title     string     `json:"title,omitempty"`
	StartTime float64    `json:"startTime,omitempty"`
	EndTime   float64    `json:"endTime,omitempty"`

	// Method is how a video transcript was obtained:
	// "captions", "whisper" or "metadata".
	Method string `json:"method,omitempty"`
}

// BatchLogRecord is the append-only audit record of one batch request.
type BatchLogRecord struct {
	ID                  string               `json:"id"`
	Timestamp           time.Time            `json:"timestamp"`
	Mode                string               `json:"mode"`
	Model               string               `json:"model"`
	QuestionTypes       map[QuestionType]int `json:"questionTypes"`
	TotalElapsedSeconds float64              `json:"totalTime"`
	QuestionsGenerated  int                  `json:"questionsGenerated"`
	Questions           []GeneratedQuestion  `json:"questions"`
	Prompts             []PromptLogEntry     `json:"prompts"`
	Transcript          string               `json:"transcript"`
	Origin              *Origin              `json:"origin,omitempty"`
}

// TranscriptPreviewLen is how many characters of source text a log keeps.
const TranscriptPreviewLen = 500

// TruncateTranscript keeps the first TranscriptPreviewLen characters of s,
// appending "..." when anything was cut.
func TruncateTranscript(s string) string {
	r := []rune(s)
	if len(r) <= TranscriptPreviewLen {
		return s
	}
	return string(r[:TranscriptPreviewLen]) + "..."
}
