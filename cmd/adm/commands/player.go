package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"osvillage/internal/models"
	"osvillage/internal/services"

	"github.com/spf13/cobra"
)

// PlayerCommands returns the read-only player inspection commands
func PlayerCommands(rt *Runtime) *cobra.Command {
	var asJSON bool

	playerCmd := &cobra.Command{
		Use:   "player",
		Short: "Inspect player progress and history",
	}
	playerCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print the raw JSON document")

	playerCmd.AddCommand(&cobra.Command{
		Use:   "progress <player_id>",
		Short: "Show aggregated progress for a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			games, err := gameService(cmd.Context(), rt)
			if err != nil {
				return err
			}
			progress, err := games.GetProgress(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), progress)
			}
			printProgress(cmd.OutOrStdout(), progress)
			return nil
		},
	})

	var limit int
	historyCmd := &cobra.Command{
		Use:   "history <player_id>",
		Short: "List the most recent sessions of a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			games, err := gameService(cmd.Context(), rt)
			if err != nil {
				return err
			}
			sessions, err := games.GetHistory(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), models.GameHistory{PlayerID: args[0], History: sessions})
			}
			printHistory(cmd.OutOrStdout(), sessions)
			return nil
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 0, "Number of sessions to show (0 uses the configured default)")
	playerCmd.AddCommand(historyCmd)

	return playerCmd
}

func gameService(ctx context.Context, rt *Runtime) (services.GameServiceInterface, error) {
	db, err := rt.DB(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewGameServiceWithLogger(db, rt.Config.Game, rt.Logger), nil
}

func printProgress(out io.Writer, p *models.PlayerProgress) {
	fmt.Fprintf(out, "Player %s: %d sessions, %d completed, %.2f%% overall\n",
		p.PlayerID, p.TotalGames, p.CompletedGames, p.OverallProgress)

	gameTypes := make([]string, 0, len(p.Games))
	for gameType := range p.Games {
		gameTypes = append(gameTypes, gameType)
	}
	sort.Strings(gameTypes)

	fmt.Fprintf(out, "%-20s %8s %10s %10s %10s\n", "Game", "Attempts", "Best", "Stars", "Completed")
	for _, gameType := range gameTypes {
		g := p.Games[gameType]
		fmt.Fprintf(out, "%-20s %8d %10d %10d %10t\n", gameType, g.Attempts, g.BestScore, g.BestStars, g.Completed)
	}
}

func printHistory(out io.Writer, sessions []models.GameSession) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded")
		return
	}
	fmt.Fprintf(out, "%-38s %-20s %-12s %-20s %6s %6s\n", "Session", "Game", "Level", "Started", "Score", "Stars")
	for _, s := range sessions {
		score, stars := "-", "-"
		if s.Score.Valid {
			score = fmt.Sprint(s.Score.Int32)
		}
		if s.Stars.Valid {
			stars = fmt.Sprint(s.Stars.Int32)
		}
		fmt.Fprintf(out, "%-38s %-20s %-12s %-20s %6s %6s\n",
			s.SessionID, s.GameType, s.Level, s.StartTime.Format("2006-01-02 15:04:05"), score, stars)
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
