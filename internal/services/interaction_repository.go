package services

import (
	"context"
	"database/sql"
	"unicode/utf8"

	"osvillage/internal/models"
	"osvillage/internal/observability"
	contextutils "osvillage/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// AIInteractionRepositoryInterface appends AI call records
type AIInteractionRepositoryInterface interface {
	Save(ctx context.Context, interaction *models.AIInteraction) error
}

// AIInteractionRepository writes the ai_interactions table
type AIInteractionRepository struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewAIInteractionRepository creates a new repository
func NewAIInteractionRepository(db *sql.DB, logger *observability.Logger) *AIInteractionRepository {
	return &AIInteractionRepository{db: db, logger: logger}
}

// Save inserts one row. Prompt and response are cut to their column widths first.
func (r *AIInteractionRepository) Save(ctx context.Context, interaction *models.AIInteraction) (err error) {
	ctx, span := observability.TraceAIFunction(ctx, "save_interaction",
		observability.AttributeSessionID(interaction.SessionID),
		attribute.String("interaction.type", string(interaction.InteractionType)),
	)
	defer observability.FinishSpan(span, &err)

	query := `
		INSERT INTO ai_interactions (session_id, interaction_type, prompt, response)
		VALUES ($1, $2, $3, $4)
		RETURNING id, timestamp`

	err = r.db.QueryRowContext(ctx, query,
		interaction.SessionID,
		string(interaction.InteractionType),
		truncateRunes(interaction.Prompt, models.InteractionPromptMaxLen),
		truncateRunes(interaction.Response, models.InteractionResponseMaxLen),
	).Scan(&interaction.ID, &interaction.Timestamp)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to save ai interaction: %v", err)
	}
	return nil
}

// truncateRunes cuts s to at most n characters without splitting a multi-byte rune
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
