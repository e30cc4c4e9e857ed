package models

// GameBreakdown aggregates every attempt a player made at one game type
type GameBreakdown struct {
	Attempts  int  `json:"attempts"`
	BestScore int  `json:"best_score"`
	BestStars int  `json:"best_stars"`
	Completed bool `json:"completed"`
}

// PlayerProgress is the per-player aggregate across all sessions
type PlayerProgress struct {
	PlayerID        string                   `json:"player_id"`
	TotalGames      int                      `json:"total_games"`
	CompletedGames  int                      `json:"completed_games"`
	Games           map[string]GameBreakdown `json:"games"`
	OverallProgress float64                  `json:"overall_progress"`
}

// GameHistory is the most-recent-first session list for a player
type GameHistory struct {
	PlayerID string        `json:"player_id"`
	History  []GameSession `json:"history"`
}
