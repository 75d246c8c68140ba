package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gmsas95/nutritrack/internal/auth"
	"github.com/gmsas95/nutritrack/internal/config"
	"github.com/gmsas95/nutritrack/internal/metrics"
	"github.com/gmsas95/nutritrack/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Pinger reports whether storage is reachable.
type Pinger interface {
	Ping() error
}

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	Auth     *auth.Service
	UseCases *usecase.Set
	Metrics  *metrics.Metrics
	Hub      *Hub
	Storage  Pinger
	Version  string
}

// Server handles the HTTP API and the progress WebSocket
type Server struct {
	app     *fiber.App
	config  *config.Config
	auth    *auth.Service
	uc      *usecase.Set
	metrics *metrics.Metrics
	hub     *Hub
	storage Pinger
	version string
	logger  *zap.Logger
}

// New creates a new API server
func New(cfg *config.Config, deps Deps, logger *zap.Logger) *Server {
	readTimeout := time.Duration(cfg.Server.ReadTimeout) * time.Second
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := time.Duration(cfg.Server.WriteTimeout) * time.Second
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:               "nutritrack",
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: true,
	})

	hub := deps.Hub
	if hub == nil {
		hub = NewHub(deps.Metrics, logger)
	}

	s := &Server{
		app:     app,
		config:  cfg,
		auth:    deps.Auth,
		uc:      deps.UseCases,
		metrics: deps.Metrics,
		hub:     hub,
		storage: deps.Storage,
		version: deps.Version,
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// App exposes the underlying fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// Start starts the server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.hub.CloseAll()
	return s.app.ShutdownWithContext(ctx)
}
