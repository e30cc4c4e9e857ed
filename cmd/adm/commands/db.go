// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"fmt"
	"io"

	"osvillage/internal/database"
	contextutils "osvillage/internal/utils"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the database management commands
func DatabaseCommands(rt *Runtime) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the village backend.

Available commands:
  init      - Apply the embedded schema
  stats     - Show row counts per table`,
	}

	dbCmd.AddCommand(initCmd(rt))
	dbCmd.AddCommand(statsCmd(rt))

	return dbCmd
}

func initCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or upgrade the schema",
		Long:  `Apply the embedded migrations. Safe to run against an existing database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := database.NewManager(rt.Logger).RunMigrations(ctx, rt.Config.Database.URL); err != nil {
				rt.Logger.Error(ctx, "Schema initialization failed", err)
				return contextutils.WrapError(err, "db init failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date on %s\n", maskDatabaseURL(rt.Config.Database.URL))
			return nil
		},
	}
}

func statsCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Long:  `Show the number of rows in every table the village backend owns.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd.Context(), rt, cmd.OutOrStdout())
		},
	}
}

func runStats(ctx context.Context, rt *Runtime, out io.Writer) error {
	db, err := rt.DB(ctx)
	if err != nil {
		return err
	}

	counts, err := database.TableCounts(ctx, db)
	if err != nil {
		rt.Logger.Error(ctx, "Failed to count rows", err)
		return contextutils.WrapError(err, "db stats failed")
	}

	fmt.Fprintln(out, getDatabaseInfo(ctx, db))
	fmt.Fprintf(out, "%-18s %10s\n", "Table", "Rows")
	for _, table := range database.Tables {
		fmt.Fprintf(out, "%-18s %10d\n", table, counts[table])
	}
	return nil
}
