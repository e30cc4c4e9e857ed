package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"osvillage/internal/config"
	"osvillage/internal/models"
	"osvillage/internal/observability"
	contextutils "osvillage/internal/utils"

	"github.com/sashabaranov/go-openai"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Sampling temperature per operation
const (
	HintTemperature     float32 = 0.8
	FeedbackTemperature float32 = 0.7
	QuestionTemperature float32 = 0.8
	QuizTemperature     float32 = 0.9
)

// Defaults substituted into prompts when the caller leaves them out
const (
	defaultHintTopic       = "operating systems"
	defaultHintStage       = "in progress"
	defaultQuestionContext = "The player is learning operating systems"
)

// ChatCompleter sends one user message and returns the model's reply text
type ChatCompleter interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
}

// OpenAIChatCompleter talks to any OpenAI-compatible chat completion endpoint
type OpenAIChatCompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAIChatCompleter builds a client for cfg.BaseURL with an instrumented transport
func NewOpenAIChatCompleter(cfg config.AIConfig) *OpenAIChatCompleter {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = config.AIRequestTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		),
	}

	return &OpenAIChatCompleter{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// Complete implements ChatCompleter
func (c *OpenAIChatCompleter) Complete(ctx context.Context, prompt string, temperature float32) (result0 string, err error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrAIRequestFailed, "chat completion failed: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", contextutils.WrapError(contextutils.ErrAIResponseInvalid, "chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// AIAdapterInterface is what the AI service needs from the adapter
type AIAdapterInterface interface {
	GetHint(ctx context.Context, gameState map[string]interface{}, errorHistory []map[string]interface{}) models.TextResult
	GetFeedback(ctx context.Context, summary models.SessionSummary) models.FeedbackResult
	AnswerQuestion(ctx context.Context, question, questionContext string) models.TextResult
	GenerateQuiz(ctx context.Context, playerLevel, topic string) models.QuizResult
}

// AIAdapter renders prompts, calls the model and turns every outcome into a tagged result.
// It never returns an error: failures become fixed placeholder values.
type AIAdapter struct {
	completer       ChatCompleter
	templateManager *AITemplateManager
	metrics         *observability.AIMetrics
	logger          *observability.Logger
}

// NewAIAdapter creates the adapter from configuration. Without an API key no client is
// built and every call answers with the unconfigured message.
func NewAIAdapter(cfg *config.Config, logger *observability.Logger) *AIAdapter {
	var completer ChatCompleter
	if cfg.AIEnabled() {
		completer = NewOpenAIChatCompleter(cfg.AI)
	} else {
		logger.Warn(context.Background(), "AI API key is not set, AI features run in degraded mode")
	}
	return NewAIAdapterWithCompleter(completer, logger, observability.NewAIMetrics())
}

// NewAIAdapterWithCompleter creates an adapter around an explicit completer. A nil
// completer means the adapter is unconfigured.
func NewAIAdapterWithCompleter(completer ChatCompleter, logger *observability.Logger, metrics *observability.AIMetrics) *AIAdapter {
	if logger == nil {
		panic("logger cannot be nil")
	}
	templateManager, err := NewAITemplateManager()
	if err != nil {
		logger.Error(context.Background(), "Failed to create template manager", err, map[string]interface{}{})
		panic(err)
	}
	return &AIAdapter{
		completer:       completer,
		templateManager: templateManager,
		metrics:         metrics,
		logger:          logger,
	}
}

// Configured reports whether a chat completer is available
func (a *AIAdapter) Configured() bool {
	return a.completer != nil
}

// GetHint asks for a short village-life hint for the player's current state
func (a *AIAdapter) GetHint(ctx context.Context, gameState map[string]interface{}, errorHistory []map[string]interface{}) models.TextResult {
	ctx, span := observability.TraceAIFunction(ctx, "get_hint")
	defer span.End()
	start := time.Now()

	stateJSON, err := json.Marshal(gameState)
	if err != nil {
		stateJSON = []byte("{}")
	}
	var historyJSON string
	if len(errorHistory) > 0 {
		if encoded, err := json.Marshal(errorHistory); err == nil {
			historyJSON = string(encoded)
		}
	}
	prompt, err := a.templateManager.RenderTemplate(HintPromptTemplate, AITemplateData{
		Topic:            stringFromState(gameState, "topic", defaultHintTopic),
		Stage:            stringFromState(gameState, "game_stage", defaultHintStage),
		GameStateJSON:    string(stateJSON),
		ErrorHistoryJSON: historyJSON,
	})
	if err != nil {
		a.logger.Error(ctx, "Failed to render hint prompt", err)
		return a.textResult(ctx, "hint", start, models.AIUnavailableMessage, models.SourceUnavailable)
	}

	text, source := a.complete(ctx, "hint", prompt, HintTemperature)
	return a.textResult(ctx, "hint", start, text, source)
}

// GetFeedback asks for a structured evaluation of a finished session
func (a *AIAdapter) GetFeedback(ctx context.Context, summary models.SessionSummary) models.FeedbackResult {
	ctx, span := observability.TraceAIFunction(ctx, "get_feedback",
		attribute.String("game.name", summary.GameName),
	)
	defer span.End()
	start := time.Now()

	result := models.FeedbackResult{Feedback: models.FallbackFeedback(), Source: models.SourceFallback}
	defer func() {
		span.SetAttributes(attribute.String("ai.source", string(result.Source)))
		a.metrics.Record(ctx, "feedback", string(result.Source), time.Since(start))
	}()

	prompt, err := a.templateManager.RenderTemplate(FeedbackPromptTemplate, AITemplateData{Summary: summary})
	if err != nil {
		a.logger.Error(ctx, "Failed to render feedback prompt", err)
		result.Source = models.SourceUnavailable
		return result
	}

	text, source := a.complete(ctx, "feedback", prompt, FeedbackTemperature)
	if source.Degraded() {
		result.Source = source
		return result
	}

	var feedback models.Feedback
	if err := a.decodeValidated(ctx, text, FeedbackSchema, &feedback); err != nil {
		a.logger.Warn(ctx, "Feedback response failed validation, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return result
	}
	result = models.FeedbackResult{Feedback: feedback, Source: models.SourceGenerated}
	return result
}

// AnswerQuestion answers a free-form question in the mentor's voice
func (a *AIAdapter) AnswerQuestion(ctx context.Context, question, questionContext string) models.TextResult {
	ctx, span := observability.TraceAIFunction(ctx, "answer_question")
	defer span.End()
	start := time.Now()

	if strings.TrimSpace(questionContext) == "" {
		questionContext = defaultQuestionContext
	}
	prompt, err := a.templateManager.RenderTemplate(QuestionPromptTemplate, AITemplateData{
		Question: question,
		Context:  questionContext,
	})
	if err != nil {
		a.logger.Error(ctx, "Failed to render question prompt", err)
		return a.textResult(ctx, "question", start, models.AIUnavailableMessage, models.SourceUnavailable)
	}

	text, source := a.complete(ctx, "question", prompt, QuestionTemperature)
	return a.textResult(ctx, "question", start, text, source)
}

// GenerateQuiz asks for a four-option question on topic at the player's level
func (a *AIAdapter) GenerateQuiz(ctx context.Context, playerLevel, topic string) models.QuizResult {
	ctx, span := observability.TraceAIFunction(ctx, "generate_quiz",
		observability.AttributeLevel(playerLevel),
		attribute.String("quiz.topic", topic),
	)
	defer span.End()
	start := time.Now()

	result := models.QuizResult{Quiz: models.FallbackQuiz(topic), Source: models.SourceFallback}
	defer func() {
		span.SetAttributes(attribute.String("ai.source", string(result.Source)))
		a.metrics.Record(ctx, "quiz", string(result.Source), time.Since(start))
	}()

	prompt, err := a.templateManager.RenderTemplate(QuizPromptTemplate, AITemplateData{
		Topic: topic,
		Level: playerLevel,
	})
	if err != nil {
		a.logger.Error(ctx, "Failed to render quiz prompt", err)
		result.Source = models.SourceUnavailable
		return result
	}

	text, source := a.complete(ctx, "quiz", prompt, QuizTemperature)
	if source.Degraded() {
		result.Source = source
		return result
	}

	var quiz models.Quiz
	if err := a.decodeValidated(ctx, text, QuizSchema, &quiz); err != nil {
		a.logger.Warn(ctx, "Quiz response failed validation, using fallback", map[string]interface{}{
			"error": err.Error(),
			"topic": topic,
		})
		return result
	}
	result = models.QuizResult{Quiz: quiz, Source: models.SourceGenerated}
	return result
}

// complete runs one chat completion and maps the outcome onto a source tag
func (a *AIAdapter) complete(ctx context.Context, operation, prompt string, temperature float32) (string, models.ResultSource) {
	if a.completer == nil {
		return models.AIUnconfiguredMessage, models.SourceUnconfigured
	}

	text, err := a.completer.Complete(ctx, prompt, temperature)
	if err != nil {
		a.logger.Error(ctx, "AI request failed", err, map[string]interface{}{
			"operation":   operation,
			"temperature": temperature,
		})
		return models.AIUnavailableMessage, models.SourceUnavailable
	}
	return strings.TrimSpace(text), models.SourceGenerated
}

func (a *AIAdapter) textResult(ctx context.Context, operation string, start time.Time, text string, source models.ResultSource) models.TextResult {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("ai.source", string(source)))
	a.metrics.Record(ctx, operation, string(source), time.Since(start))
	return models.TextResult{Text: text, Source: source}
}

// decodeValidated strips code fences, checks the reply against schema and decodes it into out
func (a *AIAdapter) decodeValidated(ctx context.Context, response, schema string, out interface{}) (err error) {
	_, span := observability.TraceAIFunction(ctx, "validate_response",
		attribute.Int("response.length", len(response)),
	)
	defer observability.FinishSpan(span, &err)

	cleaned := cleanJSONResponse(response)

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(cleaned),
	)
	if err != nil {
		span.SetAttributes(attribute.String("validation.result", "validate_error"))
		return contextutils.WrapErrorf(contextutils.ErrAIResponseInvalid, "response is not valid JSON: %v", err)
	}

	if !result.Valid() {
		errorMessages := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			errorMessages = append(errorMessages, e.String())
		}
		span.SetAttributes(attribute.String("validation.result", "invalid"))
		return contextutils.WrapErrorf(contextutils.ErrAIResponseInvalid, "response failed schema validation: %s", strings.Join(errorMessages, "; "))
	}

	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return contextutils.WrapErrorf(contextutils.ErrAIResponseInvalid, "failed to decode response: %v", err)
	}

	span.SetAttributes(attribute.String("validation.result", "valid"))
	return nil
}

// cleanJSONResponse extracts JSON from markdown code blocks or returns the original response
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimSuffix(response, "```")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
	}

	return strings.TrimSpace(response)
}

func stringFromState(state map[string]interface{}, key, fallback string) string {
	v, ok := state[key]
	if !ok || v == nil {
		return fallback
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return fallback
	}
	return s
}
