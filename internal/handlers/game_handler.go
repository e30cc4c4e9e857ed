package handlers

import (
	"net/http"
	"strconv"

	"osvillage/internal/config"
	"osvillage/internal/models"
	"osvillage/internal/observability"
	"osvillage/internal/services"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// StartGameRequest is the body of POST /api/game/start
type StartGameRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	GameType string `json:"game_type" binding:"required"`
	Level    string `json:"level"`
}

// RecordActionRequest is the body of POST /api/game/action
type RecordActionRequest struct {
	SessionID  string                 `json:"session_id" binding:"required"`
	ActionType string                 `json:"action_type" binding:"required"`
	ActionData map[string]interface{} `json:"action_data"`
}

// EndGameRequest is the body of POST /api/game/end. Pointers tell a zero score apart
// from a missing one.
type EndGameRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Score     *int   `json:"score" binding:"required"`
	Stars     *int   `json:"stars" binding:"required"`
	Completed *bool  `json:"completed" binding:"required"`
}

// GameHandler serves /api/game
type GameHandler struct {
	gameService services.GameServiceInterface
	cfg         *config.Config
	logger      *observability.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(gameService services.GameServiceInterface, cfg *config.Config, logger *observability.Logger) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		cfg:         cfg,
		logger:      logger,
	}
}

// StartGame handles POST /api/game/start
func (h *GameHandler) StartGame(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "start_game")
	defer observability.FinishSpan(span, nil)

	var req StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}
	if req.Level == "" {
		req.Level = config.DefaultLevel
	}
	span.SetAttributes(observability.AttributePlayerID(req.PlayerID), observability.AttributeGameType(req.GameType))

	sessionID, err := h.gameService.StartGame(ctx, req.PlayerID, req.GameType, req.Level)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"message":    "Game started, session ID: " + sessionID,
	})
}

// RecordAction handles POST /api/game/action
func (h *GameHandler) RecordAction(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "record_action")
	defer observability.FinishSpan(span, nil)

	var req RecordActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	success := h.gameService.RecordAction(ctx, req.SessionID, req.ActionType, req.ActionData)
	message := "Action recorded"
	if !success {
		message = "Failed to record action"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": success,
		"message": message,
	})
}

// EndGame handles POST /api/game/end
func (h *GameHandler) EndGame(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "end_game")
	defer observability.FinishSpan(span, nil)

	var req EndGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	result, err := h.gameService.EndGame(ctx, req.SessionID, *req.Score, *req.Stars, *req.Completed)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Game ended",
		"final_score": result.Score,
		"stars":       result.Stars,
	})
}

// GetProgress handles GET /api/game/progress/:player_id
func (h *GameHandler) GetProgress(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_progress")
	defer observability.FinishSpan(span, nil)

	playerID := c.Param("player_id")
	progress, err := h.gameService.GetProgress(ctx, playerID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// GetHistory handles GET /api/game/history/:player_id?limit=N
func (h *GameHandler) GetHistory(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_history")
	defer observability.FinishSpan(span, nil)

	playerID := c.Param("player_id")
	limit := h.cfg.Game.HistoryDefaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			HandleValidationError(c, "limit", raw, "must be an integer")
			return
		}
		limit = clampLimit(parsed)
	}
	span.SetAttributes(attribute.Int("history.limit", limit))

	history, err := h.gameService.GetHistory(ctx, playerID, limit)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.GameHistory{
		PlayerID: playerID,
		History:  history,
	})
}

// clampLimit keeps a history page between 1 and MaxHistoryLimit rows
func clampLimit(limit int) int {
	switch {
	case limit < 1:
		return 1
	case limit > config.MaxHistoryLimit:
		return config.MaxHistoryLimit
	default:
		return limit
	}
}
