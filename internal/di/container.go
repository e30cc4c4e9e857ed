// Package di provides dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"osvillage/internal/config"
	"osvillage/internal/database"
	"osvillage/internal/observability"
	"osvillage/internal/services"
	contextutils "osvillage/internal/utils"
)

// Service names registered in the container
const (
	GameServiceName        = "game"
	AIAdapterName          = "ai_adapter"
	InteractionServiceName = "ai_interactions"
	AIServiceName          = "ai"
	ReportServiceName      = "report"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetGameService() (services.GameServiceInterface, error)
	GetAIService() (services.AIServiceInterface, error)
	GetReportService() (services.ReportServiceInterface, error)
	GetDatabase() *sql.DB
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer builds every service once and owns the database pool
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	dbManager     *database.Manager
	db            *sql.DB
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
}

// Initialize opens the database, applies migrations and builds the services
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.dbManager = database.NewManager(sc.logger)
	db, err := sc.dbManager.InitDB(ctx, sc.cfg.Database)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to initialize database")
	}
	return sc.InitializeWithDB(ctx, db)
}

// InitializeWithDB builds the services on an already open pool. The container closes
// db on Shutdown.
func (sc *ServiceContainer) InitializeWithDB(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return contextutils.WrapError(contextutils.ErrDatabaseConnection, "database handle is nil")
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.db = db
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return db.Close()
	})

	sc.initializeServices(ctx)
	return nil
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetGameService returns the game service
func (sc *ServiceContainer) GetGameService() (services.GameServiceInterface, error) {
	return GetServiceAs[services.GameServiceInterface](sc, GameServiceName)
}

// GetAIService returns the AI service
func (sc *ServiceContainer) GetAIService() (services.AIServiceInterface, error) {
	return GetServiceAs[services.AIServiceInterface](sc, AIServiceName)
}

// GetReportService returns the report service
func (sc *ServiceContainer) GetReportService() (services.ReportServiceInterface, error) {
	return GetServiceAs[services.ReportServiceInterface](sc, ReportServiceName)
}

// GetDatabase returns the database instance
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	return sc.db
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown releases resources in reverse order of acquisition
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var errs []error
	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			sc.logger.Error(ctx, "Shutdown step failed", err)
			errs = append(errs, err)
		}
	}
	sc.shutdownFuncs = nil

	if len(errs) > 0 {
		return contextutils.WrapError(errors.Join(errs...), "shutdown errors")
	}
	return nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(ctx context.Context) {
	gameService := services.NewGameServiceWithLogger(sc.db, sc.cfg.Game, sc.logger)
	sc.services[GameServiceName] = gameService

	// AI adapter runs degraded without an API key
	adapter := services.NewAIAdapter(sc.cfg, sc.logger)
	sc.services[AIAdapterName] = adapter

	interactions := services.NewAIInteractionRepository(sc.db, sc.logger)
	sc.services[InteractionServiceName] = interactions

	aiService := services.NewAIService(gameService, adapter, interactions, sc.logger)
	sc.services[AIServiceName] = aiService

	reportService := services.NewReportService(gameService, sc.logger)
	sc.services[ReportServiceName] = reportService

	sc.logger.Info(ctx, "Services initialized", map[string]interface{}{
		"ai_configured": adapter.Configured(),
		"services":      len(sc.services),
	})
}
