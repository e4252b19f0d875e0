// Package server exposes question generation and the batch log over HTTP.
package server

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"github.com/pgokul695/Winterthon/internal/questiongen"
	"github.com/pgokul695/Winterthon/internal/source"
	"github.com/pgokul695/Winterthon/internal/store"
)

// BatchGenerator runs one batch request. *questiongen.Generator
// implements it.
type BatchGenerator interface {
	GenerateBatch(ctx context.Context, req questiongen.BatchRequest) (*questiongen.BatchResult, error)
}

// ModelCatalog lists providers and their models. *llm.Registry
// implements it.
type ModelCatalog interface {
	Default() string
	Names() []string
	Models(ctx context.Context, name string) ([]string, error)
}

// SourceFetcher turns uploads and videos into text. *source.Fetcher
// implements it.
type SourceFetcher interface {
	PDFText(ctx context.Context, path string) (string, error)
	YouTubeTranscript(ctx context.Context, videoID string, w source.Window) (*source.Transcript, error)
}

// Deps are the collaborators behind the HTTP handlers.
type Deps struct {
	Generator BatchGenerator
	Models    ModelCatalog
	Logs      store.BatchLogRepo
	Sources   SourceFetcher
}

// Config controls the HTTP layer.
type Config struct {
	// AllowOrigins is the CORS origin list, comma separated.
	AllowOrigins string

	// BodyLimit caps request bodies, PDF uploads included.
	BodyLimit int

	// GenerateRateLimit caps generation requests per IP per minute.
	// Zero disables the limit.
	GenerateRateLimit int

	Version string
}

// DefaultConfig returns the settings used by `winterthon serve`.
func DefaultConfig() Config {
	return Config{
		AllowOrigins: "*",
		BodyLimit:    32 << 20,
		Version:      "dev",
	}
}

// Server is the fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Deps
	cfg  Config
}

// New builds the application and registers every route.
func New(deps Deps, cfg Config) *Server {
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = DefaultConfig().BodyLimit
	}

	app := fiber.New(fiber.Config{
		AppName:               "winterthon",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
	})

	s := &Server{app: app, deps: deps, cfg: cfg}

	app.Use(recoveryMiddleware())
	app.Use(requestIDMiddleware())
	app.Use(loggerMiddleware())
	app.Use(corsMiddleware(cfg.AllowOrigins))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)

	api := s.app.Group("/api")
	api.Get("/models", s.listModels)

	gen := []fiber.Handler{}
	if s.cfg.GenerateRateLimit > 0 {
		gen = append(gen, generateLimiter(s.cfg.GenerateRateLimit))
	}
	api.Post("/generate", append(gen, s.generate)...)
	api.Post("/generate-pdf", append(gen, s.generatePDF)...)
	api.Post("/transcribe-and-generate", append(gen, s.transcribeAndGenerate)...)

	api.Get("/logs", s.listLogs)
	api.Get("/logs/:id", s.getLog)
	api.Delete("/logs", s.clearLogs)
}

// App returns the underlying fiber application, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler renders errors that escape handlers, such as unknown
// routes or oversized bodies, in the standard envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return Error(c, code, err.Error())
}
