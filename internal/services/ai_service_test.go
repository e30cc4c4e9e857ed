package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"osvillage/internal/models"
	"osvillage/internal/observability"
	contextutils "osvillage/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAIService() (*AIService, *mockGameService, *mockAIAdapter, *mockInteractionRepository) {
	games := &mockGameService{}
	adapter := &mockAIAdapter{}
	repo := &mockInteractionRepository{}
	return NewAIService(games, adapter, repo, observability.NewNopLogger()), games, adapter, repo
}

func TestAIService_GetHint_LogsInteraction(t *testing.T) {
	service, _, adapter, repo := newTestAIService()
	state := map[string]interface{}{"topic": "paging"}

	adapter.On("GetHint", mock.Anything, state, []map[string]interface{}{}).
		Return(models.TextResult{Text: "Think of the granary shelves.", Source: models.SourceGenerated})
	repo.On("Save", mock.Anything, mock.MatchedBy(func(i *models.AIInteraction) bool {
		return i.SessionID == "s1" &&
			i.InteractionType == models.InteractionHint &&
			i.Prompt == `{"errors":[],"game_state":{"topic":"paging"}}` &&
			i.Response == "Think of the granary shelves."
	})).Return(nil)

	result := service.GetHint(context.Background(), "s1", state, nil)
	assert.Equal(t, models.SourceGenerated, result.Source)
	assert.Equal(t, "Think of the granary shelves.", result.Text)
	adapter.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestAIService_GetHint_LogsErrorObjects(t *testing.T) {
	service, _, adapter, repo := newTestAIService()
	state := map[string]interface{}{"topic": "paging"}
	history := []map[string]interface{}{
		{"type": "page_fault", "count": 2},
		{"type": "wrong_frame", "context": map[string]interface{}{"frame": 3}},
	}

	adapter.On("GetHint", mock.Anything, state, history).
		Return(models.TextResult{Text: "Check the empty shelves first.", Source: models.SourceGenerated})
	repo.On("Save", mock.Anything, mock.MatchedBy(func(i *models.AIInteraction) bool {
		return i.Prompt == `{"errors":[{"count":2,"type":"page_fault"},{"context":{"frame":3},"type":"wrong_frame"}],"game_state":{"topic":"paging"}}`
	})).Return(nil)

	result := service.GetHint(context.Background(), "s1", state, history)
	assert.Equal(t, "Check the empty shelves first.", result.Text)
	adapter.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestAIService_GetHint_LogFailureIsIgnored(t *testing.T) {
	service, _, adapter, repo := newTestAIService()

	history := []map[string]interface{}{{"type": "e1"}}
	adapter.On("GetHint", mock.Anything, mock.Anything, history).
		Return(models.TextResult{Text: models.AIUnconfiguredMessage, Source: models.SourceUnconfigured})
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	result := service.GetHint(context.Background(), "s1", map[string]interface{}{}, history)
	assert.Equal(t, models.SourceUnconfigured, result.Source)
	repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestAIService_GetFeedback_UnknownSession(t *testing.T) {
	service, games, adapter, repo := newTestAIService()
	games.On("GetSession", mock.Anything, "missing").
		Return(nil, contextutils.WrapErrorf(contextutils.ErrSessionNotFound, "session %s does not exist", "missing"))

	result := service.GetFeedback(context.Background(), "missing")
	assert.Equal(t, models.SourceNotFound, result.Source)
	assert.Equal(t, models.NoRecordFeedback(), result.Feedback)
	adapter.AssertNotCalled(t, "GetFeedback", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAIService_GetFeedback_LookupFailure(t *testing.T) {
	service, games, adapter, _ := newTestAIService()
	games.On("GetSession", mock.Anything, "s1").
		Return(nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to load session"))

	result := service.GetFeedback(context.Background(), "s1")
	assert.Equal(t, models.SourceFailed, result.Source)
	assert.Equal(t, models.FailedFeedback(), result.Feedback)
	adapter.AssertNotCalled(t, "GetFeedback", mock.Anything, mock.Anything)
}

func TestAIService_GetFeedback_DelegatesAndLogs(t *testing.T) {
	service, games, adapter, repo := newTestAIService()
	games.On("GetSession", mock.Anything, "s1").Return(&models.GameSession{
		SessionID: "s1",
		PlayerID:  "p1",
		GameType:  "memory-management",
		Score:     sql.NullInt32{Int32: 80, Valid: true},
	}, nil)

	feedback := models.Feedback{
		Evaluation:   "Great job",
		Suggestions:  []string{"a"},
		ReviewTopics: []string{"b"},
		NextSteps:    []string{"c"},
	}
	adapter.On("GetFeedback", mock.Anything, mock.MatchedBy(func(s models.SessionSummary) bool {
		return s.GameName == "memory-management" && s.Score != nil && *s.Score == 80 &&
			s.TimeSpent == 0 && s.ErrorCount == 0 && len(s.ErrorTypes) == 0
	})).Return(models.FeedbackResult{Feedback: feedback, Source: models.SourceGenerated})
	repo.On("Save", mock.Anything, mock.MatchedBy(func(i *models.AIInteraction) bool {
		return i.InteractionType == models.InteractionFeedback &&
			strings.Contains(i.Prompt, `"game_name":"memory-management"`) &&
			strings.Contains(i.Response, `"evaluation":"Great job"`)
	})).Return(nil)

	result := service.GetFeedback(context.Background(), "s1")
	assert.Equal(t, models.SourceGenerated, result.Source)
	assert.Equal(t, feedback, result.Feedback)
	repo.AssertExpectations(t)
}

func TestAIService_QuestionAndQuizAreNotLogged(t *testing.T) {
	service, _, adapter, repo := newTestAIService()

	adapter.On("AnswerQuestion", mock.Anything, "What is a thread?", "").
		Return(models.TextResult{Text: "A helper in the household.", Source: models.SourceGenerated})
	adapter.On("GenerateQuiz", mock.Anything, "beginner", "threads").
		Return(models.QuizResult{Quiz: models.FallbackQuiz("threads"), Source: models.SourceFallback})

	answer := service.AnswerQuestion(context.Background(), "What is a thread?", "")
	assert.Equal(t, "A helper in the household.", answer.Text)

	quiz := service.GenerateQuiz(context.Background(), "beginner", "threads")
	assert.Equal(t, models.SourceFallback, quiz.Source)

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBuildSessionSummary(t *testing.T) {
	summary := BuildSessionSummary(&models.GameSession{GameType: "deadlock"})
	assert.Equal(t, "deadlock", summary.GameName)
	assert.Nil(t, summary.Score)
	assert.NotNil(t, summary.ErrorTypes)
}

func TestAIInteractionRepository_TruncatesToColumnWidth(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		sqlMock.ExpectClose()
		require.NoError(t, db.Close())
		require.NoError(t, sqlMock.ExpectationsWereMet())
	}()

	longPrompt := strings.Repeat("é", models.InteractionPromptMaxLen+50)
	longResponse := strings.Repeat("r", models.InteractionResponseMaxLen+1)
	now := time.Now()

	sqlMock.ExpectQuery("INSERT INTO ai_interactions").
		WithArgs("s1", "hint", strings.Repeat("é", models.InteractionPromptMaxLen), strings.Repeat("r", models.InteractionResponseMaxLen)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "timestamp"}).AddRow(42, now))

	repo := NewAIInteractionRepository(db, observability.NewNopLogger())
	interaction := &models.AIInteraction{
		SessionID:       "s1",
		InteractionType: models.InteractionHint,
		Prompt:          longPrompt,
		Response:        longResponse,
	}
	require.NoError(t, repo.Save(context.Background(), interaction))
	assert.Equal(t, 42, interaction.ID)
	assert.Equal(t, now, interaction.Timestamp)
}

func TestAIInteractionRepository_SaveFailure(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	sqlMock.ExpectQuery("INSERT INTO ai_interactions").WillReturnError(errors.New("relation does not exist"))

	repo := NewAIInteractionRepository(db, observability.NewNopLogger())
	err = repo.Save(context.Background(), &models.AIInteraction{SessionID: "s1", InteractionType: models.InteractionFeedback})
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrDatabaseQuery))
}
