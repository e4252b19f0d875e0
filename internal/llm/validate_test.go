package llm

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func lotSchema() *Schema {
	return &Schema{
		Name:        "test-lot-question",
		Description: "A question with one correct and several incorrect answers",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type":       "object",
					"properties": map[string]any{"text": map[string]any{"type": "string", "minLength": 1}},
					"required":   []any{"text"},
				},
				"incorrect": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 3,
				},
				"difficulty": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			},
			"required": []any{"question", "incorrect"},
		},
	}
}

func TestConform(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid", `{"question":{"text":"Q?"},"incorrect":["a","b","c"],"difficulty":"easy"}`, false},
		{"valid without optional", `{"question":{"text":"Q?"},"incorrect":["a","b","c","d"]}`, false},
		{"missing required", `{"question":{"text":"Q?"}}`, true},
		{"too few items", `{"question":{"text":"Q?"},"incorrect":["a","b"]}`, true},
		{"wrong item type", `{"question":{"text":"Q?"},"incorrect":[1,2,3]}`, true},
		{"invalid enum", `{"question":{"text":"Q?"},"incorrect":["a","b","c"],"difficulty":"trivial"}`, true},
		{"empty question text", `{"question":{"text":""},"incorrect":["a","b","c"]}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
		{"trailing data", `{"question":{"text":"Q?"},"incorrect":["a","b","c"]} extra`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Conform(lotSchema(), tt.content, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Conform() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
			if invErr.Content != tt.content {
				t.Fatalf("expected offending content to be kept, got %q", invErr.Content)
			}
		})
	}
}

func TestConform_DecodesInto(t *testing.T) {
	var got struct {
		Question struct {
			Text string `json:"text"`
		} `json:"question"`
		Incorrect []string `json:"incorrect"`
	}
	err := Conform(lotSchema(), `{"question":{"text":"Q?"},"incorrect":["a","b","c"]}`, &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Question.Text != "Q?" || len(got.Incorrect) != 3 {
		t.Fatalf("decoded %+v", got)
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, `not even json`); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestFinish(t *testing.T) {
	valid := `{"question":{"text":"Q?"},"incorrect":["a","b","c"]}`

	tests := []struct {
		name    string
		req     Request
		reply   reply
		wantErr any
	}{
		{"text", Request{}, reply{text: sampleCompletion, stop: StopEnd}, nil},
		{"truncated text kept", Request{}, reply{text: sampleCompletion, stop: StopMaxTokens}, nil},
		{"blank", Request{}, reply{text: " \n\t"}, new(*ErrEmptyResponse)},
		{"truncated json", Request{Schema: lotSchema()}, reply{text: valid, stop: StopMaxTokens}, new(*ErrMaxTokensExceeded)},
		{"off-schema json", Request{Schema: lotSchema()}, reply{text: `{"question":{}}`, stop: StopEnd}, new(*ErrInvalidResponse)},
		{"valid json", Request{Schema: lotSchema()}, reply{text: valid, stop: StopEnd}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := finish(tt.req, "gemma3:latest", tt.reply)
			if tt.wantErr != nil {
				if !errors.As(err, tt.wantErr) {
					t.Fatalf("expected %T, got %T (%v)", tt.wantErr, err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Content != tt.reply.text || resp.StopReason != tt.reply.stop {
				t.Fatalf("unexpected response %+v", resp)
			}
		})
	}
}

func TestFinish_FillsModelAndTotal(t *testing.T) {
	resp, err := finish(Request{}, "gemma3:latest", reply{
		text:  sampleCompletion,
		usage: Usage{InputTokens: 10, OutputTokens: 5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Model != "gemma3:latest" || resp.Usage.TotalTokens != 15 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"12", 12 * time.Second},
		{"-3", 0},
		{"soon", 0},
		{time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat), 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.header != "" {
			h.Set("Retry-After", tt.header)
		}
		if got := retryAfter(h); got != tt.want {
			t.Errorf("retryAfter(%q) = %s, want %s", tt.header, got, tt.want)
		}
	}

	future := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	if got := retryAfter(http.Header{"Retry-After": {future}}); got < 80*time.Second || got > 90*time.Second {
		t.Errorf("retryAfter(date) = %s, want about 90s", got)
	}
}
