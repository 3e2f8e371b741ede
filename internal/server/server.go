package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Tomlord1122/todo-form/internal/config"
	"github.com/Tomlord1122/todo-form/internal/service"
	"github.com/Tomlord1122/todo-form/internal/view"
)

type Server struct {
	cfg         config.HTTPConfig
	todoService service.TodoService
	renderer    *view.Renderer
	log         *slog.Logger
}

// New builds the application server without binding a port.
func New(todoService service.TodoService, cfg config.HTTPConfig, logger *slog.Logger) (*Server, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:         cfg,
		todoService: todoService,
		renderer:    renderer,
		log:         logger,
	}, nil
}

// NewServer wraps the application in an http.Server listening on cfg.Port.
func NewServer(todoService service.TodoService, cfg config.HTTPConfig, logger *slog.Logger) (*http.Server, error) {
	appServer, err := New(todoService, cfg, logger)
	if err != nil {
		return nil, err
	}

	// No WriteTimeout: /events is a long-lived stream.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     appServer.RegisterRoutes(),
		IdleTimeout: cfg.IdleTimeout,
		ReadTimeout: cfg.ReadTimeout,
	}

	return server, nil
}
