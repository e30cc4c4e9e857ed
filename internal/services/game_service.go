// Package services holds the game, AI and report business logic of the village backend.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"

	"osvillage/internal/config"
	"osvillage/internal/models"
	"osvillage/internal/observability"
	contextutils "osvillage/internal/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// GameServiceInterface defines the interface for game session operations.
// This allows for easier mocking in tests.
type GameServiceInterface interface {
	StartGame(ctx context.Context, playerID, gameType, level string) (string, error)
	RecordAction(ctx context.Context, sessionID, actionType string, actionData map[string]interface{}) bool
	EndGame(ctx context.Context, sessionID string, score, stars int, completed bool) (*models.GameResult, error)
	GetSession(ctx context.Context, sessionID string) (*models.GameSession, error)
	GetProgress(ctx context.Context, playerID string) (*models.PlayerProgress, error)
	GetHistory(ctx context.Context, playerID string, limit int) ([]models.GameSession, error)
}

// GameService records sessions and actions and aggregates player progress
type GameService struct {
	db     *sql.DB
	cfg    config.GameConfig
	logger *observability.Logger
}

const sessionColumns = `id, session_id, player_id, game_type, level, start_time, end_time, score, stars, completed`

// NewGameServiceWithLogger creates a new GameService
func NewGameServiceWithLogger(db *sql.DB, cfg config.GameConfig, logger *observability.Logger) *GameService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if cfg.ExpectedGameTypes <= 0 {
		cfg.ExpectedGameTypes = config.DefaultExpectedGameTypes
	}
	if cfg.HistoryDefaultLimit <= 0 {
		cfg.HistoryDefaultLimit = config.DefaultHistoryLimit
	}
	return &GameService{db: db, cfg: cfg, logger: logger}
}

// StartGame creates the player on first sight, bumps last_played otherwise, and opens a
// new session. Both writes commit together.
func (s *GameService) StartGame(ctx context.Context, playerID, gameType, level string) (result0 string, err error) {
	if level == "" {
		level = config.DefaultLevel
	}
	ctx, span := observability.TraceGameFunction(ctx, "start_game",
		observability.AttributePlayerID(playerID),
		observability.AttributeGameType(gameType),
		observability.AttributeLevel(level),
	)
	defer observability.FinishSpan(span, &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrDatabaseTransaction, "failed to begin transaction: %v", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.Error(ctx, "Failed to rollback start_game transaction", rollbackErr)
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO players (player_id, name, created_at, last_played)
		VALUES ($1, $1, NOW(), NOW())
		ON CONFLICT (player_id) DO UPDATE SET last_played = EXCLUDED.last_played`,
		playerID,
	)
	if err != nil {
		s.logger.Error(ctx, "Failed to upsert player", err, map[string]interface{}{"player_id": playerID})
		return "", contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to upsert player %s: %v", playerID, err)
	}

	sessionID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO game_sessions (session_id, player_id, game_type, level, start_time, completed)
		VALUES ($1, $2, $3, $4, NOW(), FALSE)`,
		sessionID, playerID, gameType, level,
	)
	if err != nil {
		s.logger.Error(ctx, "Failed to create game session", err, map[string]interface{}{
			"player_id": playerID,
			"game_type": gameType,
		})
		return "", contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to create session: %v", err)
	}

	if err = tx.Commit(); err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrDatabaseTransaction, "failed to commit start_game: %v", err)
	}

	span.SetAttributes(observability.AttributeSessionID(sessionID))
	s.logger.Info(ctx, "Game session started", map[string]interface{}{
		"player_id":  playerID,
		"session_id": sessionID,
		"game_type":  gameType,
		"level":      level,
	})
	return sessionID, nil
}

// RecordAction appends one action row. Failures are logged and reported as false; the
// session id is not checked against game_sessions.
func (s *GameService) RecordAction(ctx context.Context, sessionID, actionType string, actionData map[string]interface{}) bool {
	ctx, span := observability.TraceGameFunction(ctx, "record_action",
		observability.AttributeSessionID(sessionID),
		attribute.String("action.type", actionType),
	)
	defer span.End()

	var data interface{}
	if actionData != nil {
		encoded, err := json.Marshal(actionData)
		if err != nil {
			s.logger.Error(ctx, "Failed to encode action data", err, map[string]interface{}{"session_id": sessionID})
			span.SetAttributes(attribute.Bool("action.recorded", false))
			return false
		}
		data = encoded
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_logs (session_id, action_type, action_data, timestamp)
		VALUES ($1, $2, $3, NOW())`,
		sessionID, actionType, data,
	)
	if err != nil {
		s.logger.Error(ctx, "Failed to record action", err, map[string]interface{}{
			"session_id":  sessionID,
			"action_type": actionType,
		})
		span.SetAttributes(attribute.Bool("action.recorded", false))
		return false
	}

	span.SetAttributes(attribute.Bool("action.recorded", true))
	return true
}

// EndGame stores the terminal fields of a session. An unknown session yields
// ErrSessionNotFound and nothing is written. Ending twice overwrites the first result.
func (s *GameService) EndGame(ctx context.Context, sessionID string, score, stars int, completed bool) (result0 *models.GameResult, err error) {
	ctx, span := observability.TraceGameFunction(ctx, "end_game",
		observability.AttributeSessionID(sessionID),
		attribute.Int("game.score", score),
		attribute.Int("game.stars", stars),
		attribute.Bool("game.completed", completed),
	)
	defer observability.FinishSpan(span, &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseTransaction, "failed to begin transaction: %v", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.Error(ctx, "Failed to rollback end_game transaction", rollbackErr)
			}
		}
	}()

	session, err := scanSession(tx.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE session_id = $1 FOR UPDATE`, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contextutils.WrapErrorf(contextutils.ErrSessionNotFound, "session %s does not exist", sessionID)
		}
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to load session %s: %v", sessionID, err)
	}

	if session.Ended() {
		s.logger.Warn(ctx, "Session already ended, overwriting result", map[string]interface{}{
			"session_id":     sessionID,
			"previous_score": session.Score.Int32,
			"previous_stars": session.Stars.Int32,
		})
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE game_sessions
		SET end_time = NOW(), score = $2, stars = $3, completed = $4
		WHERE session_id = $1`,
		sessionID, score, stars, completed,
	)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to end session %s: %v", sessionID, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseTransaction, "failed to commit end_game: %v", err)
	}

	s.logger.Info(ctx, "Game session ended", map[string]interface{}{
		"session_id": sessionID,
		"player_id":  session.PlayerID,
		"score":      score,
		"stars":      stars,
		"completed":  completed,
	})

	return &models.GameResult{
		SessionID: sessionID,
		Score:     score,
		Stars:     stars,
		Completed: completed,
	}, nil
}

// GetSession looks one session up by its public id
func (s *GameService) GetSession(ctx context.Context, sessionID string) (result0 *models.GameSession, err error) {
	ctx, span := observability.TraceGameFunction(ctx, "get_session",
		observability.AttributeSessionID(sessionID),
	)
	defer observability.FinishSpan(span, &err)

	session, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE session_id = $1`, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contextutils.WrapErrorf(contextutils.ErrSessionNotFound, "session %s does not exist", sessionID)
		}
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to load session %s: %v", sessionID, err)
	}
	return session, nil
}

// GetProgress aggregates every session the player has started
func (s *GameService) GetProgress(ctx context.Context, playerID string) (result0 *models.PlayerProgress, err error) {
	ctx, span := observability.TraceGameFunction(ctx, "get_progress",
		observability.AttributePlayerID(playerID),
	)
	defer observability.FinishSpan(span, &err)

	sessions, err := s.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE player_id = $1 ORDER BY start_time`, playerID)
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to load progress for %s", playerID)
	}

	progress := AggregateProgress(playerID, sessions, s.cfg.ExpectedGameTypes)
	span.SetAttributes(
		attribute.Int("progress.total_games", progress.TotalGames),
		attribute.Int("progress.completed_games", progress.CompletedGames),
		attribute.Float64("progress.overall", progress.OverallProgress),
	)
	return progress, nil
}

// GetHistory returns the player's most recent sessions first. A non-positive limit uses
// the configured default.
func (s *GameService) GetHistory(ctx context.Context, playerID string, limit int) (result0 []models.GameSession, err error) {
	if limit <= 0 {
		limit = s.cfg.HistoryDefaultLimit
	}
	ctx, span := observability.TraceGameFunction(ctx, "get_history",
		observability.AttributePlayerID(playerID),
		observability.AttributeLimit(limit),
	)
	defer observability.FinishSpan(span, &err)

	sessions, err := s.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE player_id = $1 ORDER BY start_time DESC LIMIT $2`,
		playerID, limit)
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to load history for %s", playerID)
	}
	return sessions, nil
}

// AggregateProgress folds sessions into per-game bests. Overall progress is completed
// sessions over expectedGames as a percentage rounded to two decimals.
func AggregateProgress(playerID string, sessions []models.GameSession, expectedGames int) *models.PlayerProgress {
	progress := &models.PlayerProgress{
		PlayerID: playerID,
		Games:    make(map[string]models.GameBreakdown),
	}

	for _, session := range sessions {
		breakdown := progress.Games[session.GameType]
		breakdown.Attempts++
		if session.Score.Valid && int(session.Score.Int32) > breakdown.BestScore {
			breakdown.BestScore = int(session.Score.Int32)
		}
		if session.Stars.Valid && int(session.Stars.Int32) > breakdown.BestStars {
			breakdown.BestStars = int(session.Stars.Int32)
		}
		if session.Completed {
			breakdown.Completed = true
			progress.CompletedGames++
		}
		progress.Games[session.GameType] = breakdown
	}

	progress.TotalGames = len(progress.Games)
	if expectedGames > 0 && progress.CompletedGames > 0 {
		ratio := float64(progress.CompletedGames) / float64(expectedGames) * 100
		progress.OverallProgress = math.Round(ratio*100) / 100
	}
	return progress
}

func (s *GameService) querySessions(ctx context.Context, query string, args ...interface{}) (result0 []models.GameSession, err error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "session query failed: %v", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close session rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	sessions := make([]models.GameSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan session: %v", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "session rows failed: %v", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.GameSession, error) {
	var session models.GameSession
	err := row.Scan(
		&session.ID, &session.SessionID, &session.PlayerID, &session.GameType, &session.Level,
		&session.StartTime, &session.EndTime, &session.Score, &session.Stars, &session.Completed,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
