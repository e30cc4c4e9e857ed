package models

import "time"

// Report bundles a player's progress with fixed study suggestions. It is built on
// demand and never stored.
type Report struct {
	ReportID      string                   `json:"report_id"`
	PlayerID      string                   `json:"player_id"`
	TotalTime     float64                  `json:"total_time"`
	TotalGames    int                      `json:"total_games"`
	OverallScore  float64                  `json:"overall_score"`
	GameBreakdown map[string]GameBreakdown `json:"game_breakdown"`
	AISuggestions []string                 `json:"ai_suggestions"`
	CreatedAt     time.Time                `json:"created_at"`
}

// ReportStub is the placeholder returned for report lookups by id
type ReportStub struct {
	ReportID string `json:"report_id"`
	Message  string `json:"message"`
	Status   string `json:"status"`
}

// ReportSuggestions are the three fixed suggestions every report carries
var ReportSuggestions = []string{
	"Keep up the enthusiasm for learning!",
	"Practice the basic operations a bit more",
	"Try a harder challenge next",
}
