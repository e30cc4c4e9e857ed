// Package models defines the records and value types shared by the village game services.
package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Player is created on a player's first game start and touched on every later start
type Player struct {
	ID         int            `json:"id" db:"id"`
	PlayerID   string         `json:"player_id" db:"player_id"`
	Name       sql.NullString `json:"name" db:"name"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	LastPlayed time.Time      `json:"last_played" db:"last_played"`
}

// GameSession is one play-through of a game type.
// EndTime, Score and Stars stay null until the session is ended.
type GameSession struct {
	ID        int           `json:"id" db:"id"`
	SessionID string        `json:"session_id" db:"session_id"`
	PlayerID  string        `json:"player_id" db:"player_id"`
	GameType  string        `json:"game_type" db:"game_type"`
	Level     string        `json:"level" db:"level"`
	StartTime time.Time     `json:"start_time" db:"start_time"`
	EndTime   sql.NullTime  `json:"end_time" db:"end_time"`
	Score     sql.NullInt32 `json:"score" db:"score"`
	Stars     sql.NullInt32 `json:"stars" db:"stars"`
	Completed bool          `json:"completed" db:"completed"`
}

// Ended reports whether end_game has run for this session
func (s GameSession) Ended() bool {
	return s.EndTime.Valid
}

// MarshalJSON renders the history entry shape: nullable columns become JSON null
func (s GameSession) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		SessionID string     `json:"session_id"`
		GameType  string     `json:"game_type"`
		Level     string     `json:"level"`
		Score     *int32     `json:"score"`
		Stars     *int32     `json:"stars"`
		Completed bool       `json:"completed"`
		StartTime time.Time  `json:"start_time"`
		EndTime   *time.Time `json:"end_time"`
	}{
		SessionID: s.SessionID,
		GameType:  s.GameType,
		Level:     s.Level,
		Score:     nullInt32Ptr(s.Score),
		Stars:     nullInt32Ptr(s.Stars),
		Completed: s.Completed,
		StartTime: s.StartTime,
		EndTime:   nullTimePtr(s.EndTime),
	})
}

// ActionLog is one append-only gameplay event
type ActionLog struct {
	ID         int             `json:"id" db:"id"`
	SessionID  string          `json:"session_id" db:"session_id"`
	ActionType string          `json:"action_type" db:"action_type"`
	ActionData json.RawMessage `json:"action_data,omitempty" db:"action_data"`
	Timestamp  time.Time       `json:"timestamp" db:"timestamp"`
}

// ErrorRecord is an audit row for repeated player mistakes. No service path writes it;
// it is counted by the admin tooling.
type ErrorRecord struct {
	ID           int             `json:"id" db:"id"`
	SessionID    string          `json:"session_id" db:"session_id"`
	ErrorType    string          `json:"error_type" db:"error_type"`
	ErrorContext json.RawMessage `json:"error_context,omitempty" db:"error_context"`
	Count        int             `json:"count" db:"count"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`
}

// GameResult is returned by end_game
type GameResult struct {
	SessionID string `json:"session_id"`
	Score     int    `json:"score"`
	Stars     int    `json:"stars"`
	Completed bool   `json:"completed"`
}

func nullInt32Ptr(v sql.NullInt32) *int32 {
	if !v.Valid {
		return nil
	}
	return &v.Int32
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
