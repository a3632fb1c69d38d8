package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/events-api/internal/config"
	"github.com/joshua-takyi/events-api/internal/connect"
	"github.com/joshua-takyi/events-api/internal/container"
	"github.com/joshua-takyi/events-api/internal/models"
	"github.com/joshua-takyi/events-api/internal/routes"
	"github.com/joshua-takyi/events-api/internal/services"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting Events API server", "environment", cfg.Environment, "backend", cfg.StorageBackend)

	// A store that cannot be reached leaves the API up in degraded mode.
	var store models.EventStore
	if s, err := connect.OpenStore(cfg); err != nil {
		logger.Error("Failed to connect to storage", "backend", cfg.StorageBackend, "error", err)
	} else {
		store = s
		logger.Info("Connected to storage", "backend", s.Name())
	}

	var publisher services.Publisher
	if cfg.RabbitMQURL != "" {
		p, err := connect.RabbitMQConnect(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("Failed to connect to RabbitMQ, notifications disabled", "error", err)
		} else {
			publisher = p
			logger.Info("Connected to RabbitMQ")
		}
	}

	// Initialize dependency container
	appContainer := container.NewContainer(cfg, logger, store, publisher)

	// Setup routes
	router := routes.SetupRoutes(appContainer)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	connect.Disconnect(logger)

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.Level(),
		})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.Level(),
		})
	}

	return slog.New(handler)
}
