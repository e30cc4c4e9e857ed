package models

import "time"

// InteractionType tags an AIInteraction row
type InteractionType string

const (
	InteractionHint     InteractionType = "hint"
	InteractionFeedback InteractionType = "feedback"
	InteractionQuestion InteractionType = "question"
	InteractionQuiz     InteractionType = "quiz"
)

// Column widths of ai_interactions.prompt and ai_interactions.response
const (
	InteractionPromptMaxLen   = 1000
	InteractionResponseMaxLen = 2000
)

// AIInteraction is an append-only log of one AI call.
// TokensUsed is never populated and stays at its column default.
type AIInteraction struct {
	ID              int             `json:"id" db:"id"`
	SessionID       string          `json:"session_id" db:"session_id"`
	InteractionType InteractionType `json:"interaction_type" db:"interaction_type"`
	Prompt          string          `json:"prompt" db:"prompt"`
	Response        string          `json:"response" db:"response"`
	TokensUsed      int             `json:"tokens_used" db:"tokens_used"`
	Timestamp       time.Time       `json:"timestamp" db:"timestamp"`
}
