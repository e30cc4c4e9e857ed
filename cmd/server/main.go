// Package main provides the main entry point for the OS Smart Village backend server.
// It wires configuration, observability, the service container and the HTTP router.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"osvillage/internal/config"
	"osvillage/internal/di"
	"osvillage/internal/handlers"
	"osvillage/internal/observability"
	contextutils "osvillage/internal/utils"
	"osvillage/internal/version"

	"github.com/gin-gonic/gin"
)

const serviceName = "osvillage-backend"

// Application encapsulates the main application logic and can be tested
type Application struct {
	container di.ServiceContainerInterface
	router    *gin.Engine
	server    *http.Server
}

// NewApplication creates a new application instance from an initialized container
func NewApplication(container di.ServiceContainerInterface) (*Application, error) {
	gameService, err := container.GetGameService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get game service")
	}

	aiService, err := container.GetAIService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get AI service")
	}

	reportService, err := container.GetReportService()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get report service")
	}

	cfg := container.GetConfig()
	router := handlers.NewRouter(cfg, gameService, aiService, reportService, container.GetLogger())

	return &Application{
		container: container,
		router:    router,
		server: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: config.ServerReadHeaderTimeout,
		},
	}, nil
}

// Run serves HTTP until the server is shut down
func (a *Application) Run() error {
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return contextutils.WrapError(err, "server failed")
	}
	return nil
}

// Shutdown drains in-flight requests and then releases the container
func (a *Application) Shutdown(ctx context.Context) error {
	serverErr := a.server.Shutdown(ctx)
	containerErr := a.container.Shutdown(ctx)
	return errors.Join(serverErr, containerErr)
}

func main() {
	ctx := context.Background()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.OpenTelemetry.ServiceVersion == "" {
		cfg.OpenTelemetry.ServiceVersion = version.Version
	}
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, mp, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, serviceName, observability.ParseLevel(cfg.Server.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
		defer cancel()
		if err := observability.Shutdown(shutdownCtx, tp, mp); err != nil {
			logger.Warn(ctx, "Error shutting down telemetry providers", map[string]interface{}{"error": err.Error()})
		}
		_ = logger.Sync()
	}()

	logger.Info(ctx, "Starting OS Smart Village backend", map[string]interface{}{
		"host":          cfg.Server.Host,
		"port":          cfg.Server.Port,
		"log_level":     cfg.Server.LogLevel,
		"version":       version.Get().String(),
		"ai_configured": cfg.AIEnabled(),
	})

	container := di.NewServiceContainer(cfg, logger)
	if err := container.Initialize(ctx); err != nil {
		logger.Error(ctx, "Failed to initialize services", err)
		os.Exit(1)
	}

	app, err := NewApplication(container)
	if err != nil {
		logger.Error(ctx, "Failed to create application", err)
		os.Exit(1)
	}

	appErr := make(chan error, 1)
	go func() {
		appErr <- app.Run()
	}()

	select {
	case <-shutdownCh:
		logger.Info(ctx, "Received shutdown signal, shutting down gracefully")
	case err := <-appErr:
		if err != nil {
			logger.Error(ctx, "Application failed", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during application shutdown", err)
		return
	}

	logger.Info(ctx, "Shutdown completed successfully")
}
