package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var version string

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "bt",
	Short: "Guided breathing practice CLI",
	Long: `bt - A guided breathing practice CLI with day-by-day program progression.

Progress is kept on the sync server and mirrored locally, so practice
continues (and later syncs back) when the network is down.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// nameWithAliases returns "name, alias1, alias2" if aliases exist, else just "name"
func nameWithAliases(cmd *cobra.Command) string {
	if len(cmd.Aliases) > 0 {
		return cmd.Name() + ", " + strings.Join(cmd.Aliases, ", ")
	}
	return cmd.Name()
}

func init() {
	cobra.AddTemplateFunc("nameWithAliases", nameWithAliases)

	rootCmd.AddGroup(
		&cobra.Group{ID: "practice", Title: "Practice Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
}
