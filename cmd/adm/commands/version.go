package commands

import (
	"fmt"

	"osvillage/internal/version"

	"github.com/spf13/cobra"
)

// VersionCommand prints build metadata
func VersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}
