package handlers

import (
	"net/http"
	"testing"
	"time"

	"osvillage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetHint(t *testing.T) {
	r := newTestRouter(t)
	history := []map[string]interface{}{{"type": "page_fault", "count": float64(2)}}
	r.ai.On("GetHint", mock.Anything, "s1", map[string]interface{}{"topic": "paging"}, history).
		Return(models.TextResult{Text: "Like shelves in the granary.", Source: models.SourceGenerated})

	w, body := r.do(t, http.MethodPost, "/api/ai/hint", map[string]interface{}{
		"session_id":    "s1",
		"game_state":    map[string]interface{}{"topic": "paging"},
		"error_history": []map[string]interface{}{{"type": "page_fault", "count": 2}},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{
		"hint":      "Like shelves in the granary.",
		"character": models.CharacterName,
		"source":    "generated",
	}, body)
}

func TestGetHint_DegradedIsStill200(t *testing.T) {
	r := newTestRouter(t)
	r.ai.On("GetHint", mock.Anything, "s1", mock.Anything, []map[string]interface{}(nil)).
		Return(models.TextResult{Text: models.AIUnconfiguredMessage, Source: models.SourceUnconfigured})

	w, body := r.do(t, http.MethodPost, "/api/ai/hint", map[string]interface{}{
		"session_id": "s1",
		"game_state": map[string]interface{}{},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AIUnconfiguredMessage, body["hint"])
	assert.Equal(t, "unconfigured", body["source"])
}

func TestGetHint_StringErrorHistoryIs422(t *testing.T) {
	r := newTestRouter(t)

	w, _ := r.do(t, http.MethodPost, "/api/ai/hint", map[string]interface{}{
		"session_id":    "s1",
		"game_state":    map[string]interface{}{},
		"error_history": []string{"wrong frame"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetHint_MissingGameStateIs422(t *testing.T) {
	r := newTestRouter(t)

	w, _ := r.do(t, http.MethodPost, "/api/ai/hint", map[string]interface{}{"session_id": "s1"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetFeedback(t *testing.T) {
	tests := []struct {
		name   string
		result models.FeedbackResult
	}{
		{"generated", models.FeedbackResult{Feedback: models.Feedback{
			Evaluation:   "Great job",
			Suggestions:  []string{"a", "b", "c"},
			ReviewTopics: []string{"paging", "swapping"},
			NextSteps:    []string{"x", "y"},
		}, Source: models.SourceGenerated}},
		{"unknown session", models.FeedbackResult{Feedback: models.NoRecordFeedback(), Source: models.SourceNotFound}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t)
			r.ai.On("GetFeedback", mock.Anything, "s1").Return(tt.result)

			w, body := r.do(t, http.MethodPost, "/api/ai/feedback", map[string]interface{}{"session_id": "s1"})
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.result.Feedback.Evaluation, body["evaluation"])
			assert.Len(t, body["suggestions"], len(tt.result.Feedback.Suggestions))
			assert.NotNil(t, body["review_topics"])
			assert.NotNil(t, body["next_steps"])
			assert.Equal(t, string(tt.result.Source), body["source"])
		})
	}
}

func TestAnswerQuestion(t *testing.T) {
	r := newTestRouter(t)
	r.ai.On("AnswerQuestion", mock.Anything, "What is a deadlock?", "").
		Return(models.TextResult{Text: "Two carts blocking one bridge.", Source: models.SourceGenerated})

	w, body := r.do(t, http.MethodPost, "/api/ai/question", map[string]interface{}{"question": "What is a deadlock?"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Two carts blocking one bridge.", body["answer"])
	assert.Equal(t, models.CharacterName, body["character"])
}

func TestGenerateQuiz(t *testing.T) {
	r := newTestRouter(t)
	r.ai.On("GenerateQuiz", mock.Anything, "beginner", "deadlock").
		Return(models.QuizResult{Quiz: models.FallbackQuiz("deadlock"), Source: models.SourceFallback})

	w, body := r.do(t, http.MethodPost, "/api/ai/generate-quiz", map[string]interface{}{
		"player_level": "beginner",
		"topic":        "deadlock",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["question"], "deadlock")
	assert.Len(t, body["options"], 4)
	assert.Equal(t, "A", body["correct_answer"])
	assert.Equal(t, "fallback", body["source"])
}

func TestGenerateQuiz_MissingTopicIs422(t *testing.T) {
	r := newTestRouter(t)

	w, _ := r.do(t, http.MethodPost, "/api/ai/generate-quiz", map[string]interface{}{"player_level": "beginner"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGenerateReport(t *testing.T) {
	r := newTestRouter(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.reports.On("GenerateReport", mock.Anything, "p1").Return(&models.Report{
		ReportID:      "r1",
		PlayerID:      "p1",
		TotalGames:    1,
		OverallScore:  16.67,
		GameBreakdown: map[string]models.GameBreakdown{},
		AISuggestions: models.ReportSuggestions,
		CreatedAt:     created,
	}, nil)

	w, body := r.do(t, http.MethodPost, "/api/report/generate", map[string]interface{}{"player_id": "p1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r1", body["report_id"])
	assert.Equal(t, float64(0), body["total_time"])
	assert.Equal(t, 16.67, body["overall_score"])
	assert.Len(t, body["ai_suggestions"], 3)
	assert.Equal(t, "2025-03-01T12:00:00Z", body["created_at"])
}

func TestGetReportStub(t *testing.T) {
	r := newTestRouter(t)
	r.reports.On("GetReport", mock.Anything, "r1").Return(models.ReportStub{
		ReportID: "r1",
		Message:  "Report feature is under development",
		Status:   "coming_soon",
	})

	w, body := r.do(t, http.MethodGet, "/api/report/r1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "coming_soon", body["status"])
	assert.Equal(t, "r1", body["report_id"])
}
