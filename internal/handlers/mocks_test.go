package handlers

import (
	"context"

	"osvillage/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockGameService struct {
	mock.Mock
}

func (m *mockGameService) StartGame(ctx context.Context, playerID, gameType, level string) (string, error) {
	args := m.Called(ctx, playerID, gameType, level)
	return args.String(0), args.Error(1)
}

func (m *mockGameService) RecordAction(ctx context.Context, sessionID, actionType string, actionData map[string]interface{}) bool {
	args := m.Called(ctx, sessionID, actionType, actionData)
	return args.Bool(0)
}

func (m *mockGameService) EndGame(ctx context.Context, sessionID string, score, stars int, completed bool) (*models.GameResult, error) {
	args := m.Called(ctx, sessionID, score, stars, completed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameResult), args.Error(1)
}

func (m *mockGameService) GetSession(ctx context.Context, sessionID string) (*models.GameSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameSession), args.Error(1)
}

func (m *mockGameService) GetProgress(ctx context.Context, playerID string) (*models.PlayerProgress, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerProgress), args.Error(1)
}

func (m *mockGameService) GetHistory(ctx context.Context, playerID string, limit int) ([]models.GameSession, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GameSession), args.Error(1)
}

type mockAIService struct {
	mock.Mock
}

func (m *mockAIService) GetHint(ctx context.Context, sessionID string, gameState map[string]interface{}, errorHistory []map[string]interface{}) models.TextResult {
	args := m.Called(ctx, sessionID, gameState, errorHistory)
	return args.Get(0).(models.TextResult)
}

func (m *mockAIService) GetFeedback(ctx context.Context, sessionID string) models.FeedbackResult {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(models.FeedbackResult)
}

func (m *mockAIService) AnswerQuestion(ctx context.Context, question, questionContext string) models.TextResult {
	args := m.Called(ctx, question, questionContext)
	return args.Get(0).(models.TextResult)
}

func (m *mockAIService) GenerateQuiz(ctx context.Context, playerLevel, topic string) models.QuizResult {
	args := m.Called(ctx, playerLevel, topic)
	return args.Get(0).(models.QuizResult)
}

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) GenerateReport(ctx context.Context, playerID string) (*models.Report, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *mockReportService) GetReport(ctx context.Context, reportID string) models.ReportStub {
	args := m.Called(ctx, reportID)
	return args.Get(0).(models.ReportStub)
}
