package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tomlord1122/todo-form/internal/config"
	"github.com/Tomlord1122/todo-form/internal/repository"
	"github.com/Tomlord1122/todo-form/internal/server"
	"github.com/Tomlord1122/todo-form/internal/service"

	_ "github.com/joho/godotenv/autoload"
)

func gracefulShutdown(apiServer *http.Server, timeout time.Duration, logger *slog.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	ctxTimeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exiting")

	done <- true
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to an optional YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	todoRepo := repository.NewMemoryTodoRepository()

	todoService, err := service.NewTodoService(service.Config{
		Repository:     todoRepo,
		Options:        cfg.Options(),
		Logger:         logger,
		DatastarScript: cfg.DatastarScript,
	})
	if err != nil {
		log.Fatalf("Failed to create todo service: %v", err)
	}

	chiServer, err := server.NewServer(todoService, cfg.HTTP, logger)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	done := make(chan bool, 1)

	go gracefulShutdown(chiServer, cfg.HTTP.ShutdownTimeout, logger, done)

	logger.Info("starting server", "addr", chiServer.Addr)
	err = chiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server ListenAndServe error: %v", err)
	}

	// Wait for the graceful shutdown to complete
	<-done
	logger.Info("graceful shutdown complete")
}
