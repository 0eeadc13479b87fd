package api

import (
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/frontier/pkg/llm/provider/gradio"
)

// Server is the web server for the frontier chat UI.
type Server struct {
	config  Config
	resolve Resolver
	logger  *slog.Logger
	calls   *calls
	app     *fiber.App

	// mu guards the sampling fields of config, which change on reload.
	mu sync.RWMutex
}

// NewServer creates a new web server. resolve turns the model label of each
// request into a backend adapter.
func NewServer(config Config, resolve Resolver, logger *slog.Logger) *Server {
	if config.SystemPrompt == "" {
		config.SystemPrompt = DefaultSystemPrompt
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		resolve: resolve,
		logger:  logger,
		calls:   newCalls(),
		app:     app,
	}

	app.Get("/", s.handleIndex)
	app.Get("/ping", s.handlePing)
	app.Get("/backends", s.handleBackends)
	app.Post("/chat", s.handleChat)
	app.Post("/gradio_api/call/:fn", s.handleCall)
	app.Get("/gradio_api/call/:fn/:id", s.handleCallStream)

	return s
}

// Run starts the web server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting web server",
		"listen", s.config.ListenAddr,
		"gradio_fn", gradio.DefaultFn,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// SetSampling replaces the temperature and output token limit applied to
// new requests. Requests already streaming keep their settings.
func (s *Server) SetSampling(temperature float64, maxTokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Temperature = temperature
	s.config.MaxTokens = maxTokens
}

// Shutdown gracefully shuts down the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
