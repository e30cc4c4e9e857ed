package handlers

import (
	"net/http"

	"osvillage/internal/config"
	"osvillage/internal/models"
	"osvillage/internal/observability"
	"osvillage/internal/services"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// HintRequest is the body of POST /api/ai/hint
type HintRequest struct {
	SessionID    string                   `json:"session_id" binding:"required"`
	GameState    map[string]interface{}   `json:"game_state" binding:"required"`
	ErrorHistory []map[string]interface{} `json:"error_history"`
}

// FeedbackRequest is the body of POST /api/ai/feedback
type FeedbackRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// QuestionRequest is the body of POST /api/ai/question
type QuestionRequest struct {
	Question string `json:"question" binding:"required"`
	Context  string `json:"context"`
}

// QuizRequest is the body of POST /api/ai/generate-quiz
type QuizRequest struct {
	PlayerLevel string `json:"player_level" binding:"required"`
	Topic       string `json:"topic" binding:"required"`
}

// AIHandler serves /api/ai. The AI service never fails a request; degraded answers
// are marked by "source".
type AIHandler struct {
	aiService services.AIServiceInterface
	cfg       *config.Config
	logger    *observability.Logger
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(aiService services.AIServiceInterface, cfg *config.Config, logger *observability.Logger) *AIHandler {
	return &AIHandler{
		aiService: aiService,
		cfg:       cfg,
		logger:    logger,
	}
}

// GetHint handles POST /api/ai/hint
func (h *AIHandler) GetHint(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_hint")
	defer observability.FinishSpan(span, nil)

	var req HintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	result := h.aiService.GetHint(ctx, req.SessionID, req.GameState, req.ErrorHistory)
	span.SetAttributes(attribute.String("ai.source", string(result.Source)))
	c.JSON(http.StatusOK, gin.H{
		"hint":      result.Text,
		"character": models.CharacterName,
		"source":    result.Source,
	})
}

// GetFeedback handles POST /api/ai/feedback
func (h *AIHandler) GetFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_feedback")
	defer observability.FinishSpan(span, nil)

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	result := h.aiService.GetFeedback(ctx, req.SessionID)
	span.SetAttributes(attribute.String("ai.source", string(result.Source)))
	c.JSON(http.StatusOK, gin.H{
		"evaluation":    result.Feedback.Evaluation,
		"suggestions":   nonNil(result.Feedback.Suggestions),
		"review_topics": nonNil(result.Feedback.ReviewTopics),
		"next_steps":    nonNil(result.Feedback.NextSteps),
		"source":        result.Source,
	})
}

// AnswerQuestion handles POST /api/ai/question
func (h *AIHandler) AnswerQuestion(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "answer_question")
	defer observability.FinishSpan(span, nil)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	result := h.aiService.AnswerQuestion(ctx, req.Question, req.Context)
	span.SetAttributes(attribute.String("ai.source", string(result.Source)))
	c.JSON(http.StatusOK, gin.H{
		"answer":    result.Text,
		"character": models.CharacterName,
		"source":    result.Source,
	})
}

// GenerateQuiz handles POST /api/ai/generate-quiz
func (h *AIHandler) GenerateQuiz(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "generate_quiz")
	defer observability.FinishSpan(span, nil)

	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		return
	}

	result := h.aiService.GenerateQuiz(ctx, req.PlayerLevel, req.Topic)
	span.SetAttributes(attribute.String("ai.source", string(result.Source)))
	c.JSON(http.StatusOK, gin.H{
		"question":       result.Quiz.Question,
		"options":        nonNil(result.Quiz.Options),
		"correct_answer": result.Quiz.CorrectAnswer,
		"explanation":    result.Quiz.Explanation,
		"source":         result.Source,
	})
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
