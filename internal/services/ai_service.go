package services

import (
	"context"
	"encoding/json"
	"errors"

	"osvillage/internal/models"
	"osvillage/internal/observability"
	contextutils "osvillage/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// AIServiceInterface defines the AI-backed operations exposed over HTTP
type AIServiceInterface interface {
	GetHint(ctx context.Context, sessionID string, gameState map[string]interface{}, errorHistory []map[string]interface{}) models.TextResult
	GetFeedback(ctx context.Context, sessionID string) models.FeedbackResult
	AnswerQuestion(ctx context.Context, question, questionContext string) models.TextResult
	GenerateQuiz(ctx context.Context, playerLevel, topic string) models.QuizResult
}

// AIService ties session data to the AI adapter and keeps the interaction log
type AIService struct {
	games        GameServiceInterface
	adapter      AIAdapterInterface
	interactions AIInteractionRepositoryInterface
	logger       *observability.Logger
}

// NewAIService creates a new AI service instance
func NewAIService(games GameServiceInterface, adapter AIAdapterInterface, interactions AIInteractionRepositoryInterface, logger *observability.Logger) *AIService {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &AIService{
		games:        games,
		adapter:      adapter,
		interactions: interactions,
		logger:       logger,
	}
}

// GetHint asks the adapter for a hint and logs the exchange against the session
func (s *AIService) GetHint(ctx context.Context, sessionID string, gameState map[string]interface{}, errorHistory []map[string]interface{}) models.TextResult {
	ctx, span := observability.TraceAIFunction(ctx, "service_get_hint",
		observability.AttributeSessionID(sessionID),
		attribute.Int("hint.error_count", len(errorHistory)),
	)
	defer span.End()

	if errorHistory == nil {
		errorHistory = []map[string]interface{}{}
	}

	result := s.adapter.GetHint(ctx, gameState, errorHistory)

	prompt, err := json.Marshal(map[string]interface{}{
		"game_state": gameState,
		"errors":     errorHistory,
	})
	if err != nil {
		s.logger.Warn(ctx, "Failed to encode hint request for interaction log", map[string]interface{}{"error": err.Error()})
		prompt = []byte("{}")
	}
	s.logInteraction(ctx, sessionID, models.InteractionHint, string(prompt), result.Text)

	span.SetAttributes(attribute.String("ai.source", string(result.Source)))
	return result
}

// GetFeedback evaluates a session. Unknown sessions get the fixed "no record" answer
// without calling the model; lookup errors get the fixed "failed" answer.
func (s *AIService) GetFeedback(ctx context.Context, sessionID string) models.FeedbackResult {
	ctx, span := observability.TraceAIFunction(ctx, "service_get_feedback",
		observability.AttributeSessionID(sessionID),
	)
	defer span.End()

	session, err := s.games.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, contextutils.ErrSessionNotFound) {
			span.SetAttributes(attribute.String("ai.source", string(models.SourceNotFound)))
			return models.FeedbackResult{Feedback: models.NoRecordFeedback(), Source: models.SourceNotFound}
		}
		s.logger.Error(ctx, "Failed to load session for feedback", err, map[string]interface{}{"session_id": sessionID})
		span.SetAttributes(attribute.String("ai.source", string(models.SourceFailed)))
		return models.FeedbackResult{Feedback: models.FailedFeedback(), Source: models.SourceFailed}
	}

	summary := BuildSessionSummary(session)
	result := s.adapter.GetFeedback(ctx, summary)

	prompt, promptErr := json.Marshal(summary)
	response, responseErr := json.Marshal(result.Feedback)
	if promptErr != nil || responseErr != nil {
		s.logger.Warn(ctx, "Failed to encode feedback for interaction log", map[string]interface{}{"session_id": sessionID})
	} else {
		s.logInteraction(ctx, sessionID, models.InteractionFeedback, string(prompt), string(response))
	}

	span.SetAttributes(attribute.String("ai.source", string(result.Source)))
	return result
}

// AnswerQuestion forwards a free-form question. Nothing is logged.
func (s *AIService) AnswerQuestion(ctx context.Context, question, questionContext string) models.TextResult {
	ctx, span := observability.TraceAIFunction(ctx, "service_answer_question")
	defer span.End()
	return s.adapter.AnswerQuestion(ctx, question, questionContext)
}

// GenerateQuiz forwards a quiz request. Nothing is logged.
func (s *AIService) GenerateQuiz(ctx context.Context, playerLevel, topic string) models.QuizResult {
	ctx, span := observability.TraceAIFunction(ctx, "service_generate_quiz",
		observability.AttributeLevel(playerLevel),
	)
	defer span.End()
	return s.adapter.GenerateQuiz(ctx, playerLevel, topic)
}

// BuildSessionSummary turns a stored session into the feedback prompt input.
// Time spent and error statistics are not tracked and stay zero.
func BuildSessionSummary(session *models.GameSession) models.SessionSummary {
	summary := models.SessionSummary{
		GameName:   session.GameType,
		ErrorTypes: []string{},
	}
	if session.Score.Valid {
		score := session.Score.Int32
		summary.Score = &score
	}
	return summary
}

// logInteraction persists one exchange; a failed write never reaches the caller
func (s *AIService) logInteraction(ctx context.Context, sessionID string, kind models.InteractionType, prompt, response string) {
	if s.interactions == nil {
		return
	}
	err := s.interactions.Save(ctx, &models.AIInteraction{
		SessionID:       sessionID,
		InteractionType: kind,
		Prompt:          prompt,
		Response:        response,
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to log AI interaction", err, map[string]interface{}{
			"session_id":       sessionID,
			"interaction_type": string(kind),
		})
	}
}
