package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pgokul695/Winterthon/internal/llm"
	"github.com/pgokul695/Winterthon/internal/questiongen"
	"github.com/pgokul695/Winterthon/internal/quiz"
	"github.com/pgokul695/Winterthon/internal/source"
)

type generateRequest struct {
	Mode          string                    `json:"mode"`
	Model         string                    `json:"model"`
	Transcript    string                    `json:"transcript"`
	QuestionTypes map[quiz.QuestionType]int `json:"questionTypes"`
}

type youtubeRequest struct {
	VideoURL      string                    `json:"videoUrl"`
	StartTime     float64                   `json:"startTime"`
	EndTime       float64                   `json:"endTime"`
	Mode          string                    `json:"mode"`
	Model         string                    `json:"model"`
	QuestionTypes map[quiz.QuestionType]int `json:"questionTypes"`
}

// questionResponse is the body of every generation endpoint.
type questionResponse struct {
	Questions          []quiz.GeneratedQuestion `json:"questions"`
	TotalTime          float64                  `json:"totalTime"`
	Mode               string                   `json:"mode"`
	Model              string                   `json:"model"`
	LogID              string                   `json:"logId"`
	QuestionsGenerated int                      `json:"questionsGenerated"`
	Origin             *quiz.Origin             `json:"origin,omitempty"`
}

type logSummary struct {
	ID                 string                    `json:"id"`
	Timestamp          string                    `json:"timestamp"`
	Mode               string                    `json:"mode"`
	Model              string                    `json:"model"`
	QuestionTypes      map[quiz.QuestionType]int `json:"questionTypes"`
	TotalTime          float64                   `json:"totalTime"`
	QuestionsGenerated int                       `json:"questionsGenerated"`
	Origin             *quiz.Origin              `json:"origin,omitempty"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return Success(c, "ok", fiber.Map{
		"version":  s.cfg.Version,
		"provider": s.deps.Models.Default(),
	})
}

func (s *Server) listModels(c *fiber.Ctx) error {
	mode := c.Query("mode", s.deps.Models.Default())
	models, err := s.deps.Models.Models(c.UserContext(), mode)
	if errors.Is(err, llm.ErrUnknownProvider) {
		return Error(c, fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return Error(c, fiber.StatusBadGateway, err.Error())
	}
	return Success(c, "models", fiber.Map{
		"mode":      mode,
		"models":    models,
		"providers": s.deps.Models.Names(),
	})
}

func (s *Server) generate(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid JSON body: "+err.Error())
	}

	return s.runBatch(c, questiongen.BatchRequest{
		SourceText:    req.Transcript,
		QuestionTypes: req.QuestionTypes,
		Model:         s.selector(req.Mode, req.Model),
		Origin:        &quiz.Origin{Kind: quiz.OriginText},
	})
}

func (s *Server) generatePDF(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "a PDF must be uploaded in the \"file\" field")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return Error(c, fiber.StatusBadRequest, "only PDF uploads are supported")
	}

	var counts map[quiz.QuestionType]int
	if raw := c.FormValue("questionTypes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &counts); err != nil {
			return Error(c, fiber.StatusBadRequest, "questionTypes must be a JSON object: "+err.Error())
		}
	}

	tmp, err := os.CreateTemp("", "winterthon-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(path) }()

	if err := c.SaveFile(fh, path); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}

	text, err := s.deps.Sources.PDFText(c.UserContext(), path)
	if err != nil {
		return respondError(c, err)
	}

	return s.runBatch(c, questiongen.BatchRequest{
		SourceText:    text,
		QuestionTypes: counts,
		Model:         s.selector(c.FormValue("mode"), c.FormValue("model")),
		Origin:        &quiz.Origin{Kind: quiz.OriginPDF, FileName: fh.Filename},
	})
}

func (s *Server) transcribeAndGenerate(c *fiber.Ctx) error {
	var req youtubeRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid JSON body: "+err.Error())
	}

	videoID, err := source.ExtractVideoID(strings.TrimSpace(req.VideoURL))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, err.Error())
	}
	if req.StartTime < 0 || (req.EndTime > 0 && req.EndTime < req.StartTime) {
		return Error(c, fiber.StatusBadRequest, "endTime must not be before startTime")
	}

	tr, err := s.deps.Sources.YouTubeTranscript(c.UserContext(), videoID,
		source.Window{Start: req.StartTime, End: req.EndTime})
	if err != nil {
		return respondError(c, err)
	}
	origin := tr.Origin

	return s.runBatch(c, questiongen.BatchRequest{
		SourceText:    tr.Text,
		QuestionTypes: req.QuestionTypes,
		Model:         s.selector(req.Mode, req.Model),
		Origin:        &origin,
	})
}

// selector falls back to the default provider when the client names none.
func (s *Server) selector(mode, model string) quiz.ModelSelector {
	if mode == "" {
		mode = s.deps.Models.Default()
	}
	return quiz.ModelSelector{Provider: mode, Name: model}
}

func (s *Server) runBatch(c *fiber.Ctx, req questiongen.BatchRequest) error {
	res, err := s.deps.Generator.GenerateBatch(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	slog.Info("batch generated",
		"batch", res.BatchID,
		"mode", res.Model.Provider,
		"model", res.Model.Name,
		"types", sortedTypes(req.QuestionTypes),
		"questions", res.QuestionsGenerated,
		"attempts", len(res.Prompts),
		"seconds", res.TotalElapsedSeconds,
	)

	return c.JSON(questionResponse{
		Questions:          res.Questions,
		TotalTime:          res.TotalElapsedSeconds,
		Mode:               res.Model.Provider,
		Model:              res.Model.Name,
		LogID:              res.BatchID,
		QuestionsGenerated: res.QuestionsGenerated,
		Origin:             req.Origin,
	})
}

func (s *Server) listLogs(c *fiber.Ctx) error {
	records, err := s.deps.Logs.List(c.UserContext())
	if err != nil {
		return fmt.Errorf("list logs: %w", err)
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	summaries := make([]logSummary, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		summaries = append(summaries, logSummary{
			ID:                 r.ID,
			Timestamp:          r.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
			Mode:               r.Mode,
			Model:              r.Model,
			QuestionTypes:      r.QuestionTypes,
			TotalTime:          r.TotalElapsedSeconds,
			QuestionsGenerated: r.QuestionsGenerated,
			Origin:             r.Origin,
		})
		if limit > 0 && len(summaries) == limit {
			break
		}
	}
	return Success(c, fmt.Sprintf("%d logs", len(summaries)), summaries)
}

func (s *Server) getLog(c *fiber.Ctx) error {
	id := c.Params("id")
	rec, err := s.deps.Logs.FindByID(c.UserContext(), id)
	if err != nil {
		return fmt.Errorf("find log: %w", err)
	}
	if rec == nil {
		return Error(c, fiber.StatusNotFound, fmt.Sprintf("log %s not found", id))
	}
	return Success(c, "log", rec)
}

func (s *Server) clearLogs(c *fiber.Ctx) error {
	if err := s.deps.Logs.Clear(c.UserContext()); err != nil {
		return fmt.Errorf("clear logs: %w", err)
	}
	return Success(c, "logs cleared", nil)
}

// respondError maps domain errors to status codes. Anything unknown is
// left to the fiber error handler as a 500.
func respondError(c *fiber.Ctx, err error) error {
	var invalid *questiongen.InvalidRequestError
	if errors.As(err, &invalid) {
		return ValidationError(c, invalid)
	}
	var callErr *questiongen.ModelCallError
	switch {
	case errors.As(err, &callErr):
		return Error(c, fiber.StatusBadGateway, err.Error())
	case errors.Is(err, source.ErrInvalidVideo):
		return Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, source.ErrNoText):
		return Error(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, source.ErrToolMissing):
		return Error(c, fiber.StatusServiceUnavailable, err.Error())
	}
	return err
}

// sortedTypes lists the request's type codes for log messages.
func sortedTypes(counts map[quiz.QuestionType]int) []string {
	out := make([]string, 0, len(counts))
	for qt := range counts {
		out = append(out, string(qt))
	}
	sort.Strings(out)
	return out
}
