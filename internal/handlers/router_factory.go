// Package handlers wires the HTTP API onto gin.
package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"osvillage/internal/config"
	"osvillage/internal/middleware"
	"osvillage/internal/observability"
	"osvillage/internal/services"
	"osvillage/internal/version"
)

// NewRouter creates the gin engine with middleware and every API route
func NewRouter(
	cfg *config.Config,
	gameService services.GameServiceInterface,
	aiService services.AIServiceInterface,
	reportService services.ReportServiceInterface,
	logger *observability.Logger,
) *gin.Engine {
	router := gin.New()

	// Tracing first so later middleware and handlers share the request span
	router.Use(observability.GinMiddleware(cfg.OpenTelemetry.ServiceName))
	router.Use(observability.ErrorSpanMiddleware())
	router.Use(observability.RequestLogger(logger))
	router.Use(middleware.ErrorRecoveryMiddleware(logger))

	// Disable automatic redirection for trailing slashes, which is better for APIs
	router.RedirectTrailingSlash = false

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.IsDevelopment = cfg.Server.Debug
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to OS Smart Village API",
			"version": version.Version,
			"docs":    "/docs",
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	gameHandler := NewGameHandler(gameService, cfg, logger)
	aiHandler := NewAIHandler(aiService, cfg, logger)
	reportHandler := NewReportHandler(reportService, logger)

	api := router.Group("/api")
	{
		game := api.Group("/game")
		{
			game.POST("/start", gameHandler.StartGame)
			game.POST("/action", gameHandler.RecordAction)
			game.POST("/end", gameHandler.EndGame)
			game.GET("/progress/:player_id", gameHandler.GetProgress)
			game.GET("/history/:player_id", gameHandler.GetHistory)
		}

		ai := api.Group("/ai")
		{
			ai.POST("/hint", aiHandler.GetHint)
			ai.POST("/feedback", aiHandler.GetFeedback)
			ai.POST("/question", aiHandler.AnswerQuestion)
			ai.POST("/generate-quiz", aiHandler.GenerateQuiz)
		}

		report := api.Group("/report")
		{
			report.POST("/generate", reportHandler.GenerateReport)
			report.GET("/:report_id", reportHandler.GetReport)
		}
	}

	routeListing := NewRouteListingHandler(cfg.OpenTelemetry.ServiceName)
	router.GET("/docs", routeListing.GetRouteListing)
	routeListing.CollectRoutes(router)

	return router
}
