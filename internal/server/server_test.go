package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgokul695/Winterthon/internal/llm"
	"github.com/pgokul695/Winterthon/internal/questiongen"
	"github.com/pgokul695/Winterthon/internal/quiz"
	"github.com/pgokul695/Winterthon/internal/source"
	"github.com/pgokul695/Winterthon/internal/store"
)

const completion = `QUESTION:
Which gas do plants release during photosynthesis?

CORRECT:
Oxygen

WRONG:
Nitrogen
Helium
Methane

EXPLANATIONS:
CORRECT: Water is split and oxygen is released.
WRONG 1: Nitrogen is not produced by photosynthesis.
WRONG 2: Helium plays no part in plant metabolism.
WRONG 3: Methane comes from anaerobic decay.
`

const lesson = "Plants use sunlight, water and carbon dioxide to make glucose, releasing oxygen."

type fakeSources struct {
	pdfText    string
	pdfPath    string
	transcript *source.Transcript
	err        error
}

func (f *fakeSources) PDFText(_ context.Context, path string) (string, error) {
	f.pdfPath = path
	return f.pdfText, f.err
}

func (f *fakeSources) YouTubeTranscript(_ context.Context, videoID string, w source.Window) (*source.Transcript, error) {
	if f.err != nil {
		return nil, f.err
	}
	tr := *f.transcript
	tr.Origin.VideoID = videoID
	tr.Origin.StartTime = w.Start
	tr.Origin.EndTime = w.End
	return &tr, nil
}

type testEnv struct {
	srv     *Server
	mock    *llm.MockProvider
	logs    store.BatchLogRepo
	sources *fakeSources
}

func newTestEnv(t *testing.T, responses ...llm.MockResponse) *testEnv {
	t.Helper()

	mock := llm.NewMockProvider(responses...)
	llmCfg := llm.DefaultConfig()
	llmCfg.Provider = "mock"
	reg := llm.NewRegistry(llmCfg, nil)
	reg.Register("mock", mock)

	logs, err := store.OpenJSONL(filepath.Join(t.TempDir(), "batches.jsonl"))
	require.NoError(t, err)

	sources := &fakeSources{}
	cfg := DefaultConfig()
	cfg.Version = "test"

	srv := New(Deps{
		Generator: questiongen.New(reg, logs, questiongen.DefaultConfig()),
		Models:    reg,
		Logs:      logs,
		Sources:   sources,
	}, cfg)

	return &testEnv{srv: srv, mock: mock, logs: logs, sources: sources}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := e.srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	return resp.StatusCode, body
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "test", data["version"])
	assert.Equal(t, "mock", data["provider"])
}

func TestListModels(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/models", nil))
	require.Equal(t, http.StatusOK, code)

	data := body["data"].(map[string]any)
	assert.Equal(t, "mock", data["mode"])
	assert.Equal(t, []any{"mock"}, data["models"])
	assert.Contains(t, data["providers"], "mock")
	assert.Contains(t, data["providers"], "ollama")
}

func TestListModels_ETag(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/models", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	tag := resp.Header.Get(fiber.HeaderETag)
	require.NotEmpty(t, tag)

	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	req.Header.Set(fiber.HeaderIfNoneMatch, tag)
	resp, err = env.srv.App().Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t,
		llm.MockResponse{Content: completion},
		llm.MockResponse{Content: "no anchors here"},
	)

	code, body := env.do(t, jsonRequest(t, http.MethodPost, "/api/generate", fiber.Map{
		"transcript":    lesson,
		"questionTypes": map[string]int{"SOL": 2},
	}))
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "mock", body["mode"])
	assert.Equal(t, "mock", body["model"])
	assert.EqualValues(t, 1, body["questionsGenerated"])

	questions := body["questions"].([]any)
	require.Len(t, questions, 1)
	q := questions[0].(map[string]any)
	assert.Equal(t, "Which gas do plants release during photosynthesis?", q["questionText"])
	assert.Len(t, q["options"], 4)
	assert.Equal(t, "text", body["origin"].(map[string]any)["kind"])

	logID, _ := body["logId"].(string)
	require.NotEmpty(t, logID)

	rec, err := env.logs.FindByID(context.Background(), logID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Len(t, rec.Prompts, 2)
	assert.True(t, rec.Prompts[1].Failed())
}

func TestGenerate_InvalidRequest(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, jsonRequest(t, http.MethodPost, "/api/generate", fiber.Map{
		"transcript":    "   ",
		"questionTypes": map[string]int{},
	}))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", body["status"])

	var fields []string
	for _, f := range body["errors"].([]any) {
		fields = append(fields, f.(map[string]any)["field"].(string))
	}
	assert.Contains(t, fields, "transcript")
	assert.Contains(t, fields, "questionTypes")
	assert.Empty(t, env.mock.Calls)
}

func TestGenerate_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	code, body := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "invalid JSON body")
}

func TestGenerate_UnknownProvider(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, jsonRequest(t, http.MethodPost, "/api/generate", fiber.Map{
		"mode":          "carrier-pigeon",
		"transcript":    lesson,
		"questionTypes": map[string]int{"SOL": 1},
	}))
	assert.Equal(t, http.StatusBadRequest, code)
	require.Len(t, body["errors"], 1)
	field := body["errors"].([]any)[0].(map[string]any)
	assert.Equal(t, "mode", field["field"])
	assert.Contains(t, field["message"], "carrier-pigeon")
	assert.Empty(t, env.mock.Calls)

	code, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/models?mode=carrier-pigeon", nil))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGeneratePDF(t *testing.T) {
	env := newTestEnv(t, llm.MockResponse{Content: completion})
	env.sources.pdfText = lesson

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, mw.WriteField("questionTypes", `{"TF":1}`))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/generate-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	code, body := env.do(t, req)
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	assert.EqualValues(t, 1, body["questionsGenerated"])

	origin := body["origin"].(map[string]any)
	assert.Equal(t, "pdf", origin["kind"])
	assert.Equal(t, "notes.pdf", origin["fileName"])
	assert.NotEmpty(t, env.sources.pdfPath)
	assert.NoFileExists(t, env.sources.pdfPath)
}

func TestGeneratePDF_Rejections(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.docx")
	require.NoError(t, err)
	_, _ = part.Write([]byte("not a pdf"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/generate-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, _ := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, code)

	buf.Reset()
	mw = multipart.NewWriter(&buf)
	part, err = mw.CreateFormFile("file", "scan.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF"))
	require.NoError(t, mw.WriteField("questionTypes", `{"SOL":1}`))
	require.NoError(t, mw.Close())

	env.sources.err = source.ErrNoText
	req = httptest.NewRequest(http.MethodPost, "/api/generate-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, _ = env.do(t, req)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestTranscribeAndGenerate(t *testing.T) {
	env := newTestEnv(t, llm.MockResponse{Content: completion})
	env.sources.transcript = &source.Transcript{
		Text: lesson,
		Origin: quiz.Origin{
			Kind:   quiz.OriginYouTube,
			Title:  "Photosynthesis",
			Method: source.MethodCaptions,
		},
	}

	code, body := env.do(t, jsonRequest(t, http.MethodPost, "/api/transcribe-and-generate", fiber.Map{
		"videoUrl":      "https://youtu.be/dQw4w9WgXcQ",
		"startTime":     10,
		"endTime":       90,
		"questionTypes": map[string]int{"MCQ": 1},
	}))
	require.Equal(t, http.StatusOK, code, "body: %v", body)

	origin := body["origin"].(map[string]any)
	assert.Equal(t, "dQw4w9WgXcQ", origin["videoId"])
	assert.Equal(t, "captions", origin["method"])
	assert.EqualValues(t, 90, origin["endTime"])
}

func TestTranscribeAndGenerate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     fiber.Map
		srcErr   error
		wantCode int
	}{
		{
			name:     "invalid url",
			body:     fiber.Map{"videoUrl": "https://vimeo.com/1", "questionTypes": map[string]int{"SOL": 1}},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "inverted window",
			body:     fiber.Map{"videoUrl": "dQw4w9WgXcQ", "startTime": 60, "endTime": 30},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "tool missing",
			body:     fiber.Map{"videoUrl": "dQw4w9WgXcQ", "questionTypes": map[string]int{"SOL": 1}},
			srcErr:   source.ErrToolMissing,
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "unexpected failure",
			body:     fiber.Map{"videoUrl": "dQw4w9WgXcQ", "questionTypes": map[string]int{"SOL": 1}},
			srcErr:   errors.New("disk on fire"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.sources.err = tt.srcErr

			code, body := env.do(t, jsonRequest(t, http.MethodPost, "/api/transcribe-and-generate", tt.body))
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, "error", body["status"])
		})
	}
}

func TestLogs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		require.NoError(t, env.logs.Append(ctx, &quiz.BatchLogRecord{
			ID:            id,
			Mode:          "mock",
			Model:         "mock",
			QuestionTypes: map[quiz.QuestionType]int{quiz.TypeSingleCorrect: 1},
		}))
	}

	code, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/logs?limit=2", nil))
	require.Equal(t, http.StatusOK, code)
	list := body["data"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].(map[string]any)["id"])
	assert.Equal(t, "second", list[1].(map[string]any)["id"])

	code, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/logs/first", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "first", body["data"].(map[string]any)["id"])

	code, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/logs/missing", nil))
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/logs", nil))
	require.Equal(t, http.StatusOK, code)

	records, err := env.logs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error", body["status"])
	assert.EqualValues(t, http.StatusNotFound, body["code"])
}

func TestGenerateRateLimit(t *testing.T) {
	mock := llm.NewMockProvider()
	llmCfg := llm.DefaultConfig()
	llmCfg.Provider = "mock"
	reg := llm.NewRegistry(llmCfg, nil)
	reg.Register("mock", mock)

	cfg := DefaultConfig()
	cfg.GenerateRateLimit = 1
	srv := New(Deps{
		Generator: questiongen.New(reg, nil, questiongen.DefaultConfig()),
		Models:    reg,
		Sources:   &fakeSources{},
	}, cfg)
	env := &testEnv{srv: srv}

	body := fiber.Map{"transcript": lesson, "questionTypes": map[string]int{"SOL": 0}}
	code, _ := env.do(t, jsonRequest(t, http.MethodPost, "/api/generate", body))
	assert.Equal(t, http.StatusOK, code)

	code, resp := env.do(t, jsonRequest(t, http.MethodPost, "/api/generate", body))
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "error", resp["status"])
}
