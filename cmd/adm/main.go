// Package main provides the administration CLI for the OS Smart Village backend.
package main

import (
	"context"
	"fmt"
	"os"

	"osvillage/cmd/adm/commands"
	"osvillage/internal/config"
	"osvillage/internal/observability"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// No exporters for a short-lived CLI
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "osvillage-admin", zapcore.ErrorLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}

	rt := &commands.Runtime{Config: cfg, Logger: logger}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn(ctx, "Failed to close database connection", map[string]interface{}{"error": err.Error()})
		}
	}()

	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "OS Smart Village administration tool",
		Long: `OS Smart Village administration tool

Initializes the schema and inspects player progress from the command line.
Configuration is read the same way as the server (config.yaml plus environment).`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(commands.DatabaseCommands(rt))
	rootCmd.AddCommand(commands.PlayerCommands(rt))
	rootCmd.AddCommand(commands.VersionCommand())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
