package cmd

import (
	"fmt"

	"github.com/jstrand/bt/internal/output"
	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show practice statistics",
	GroupID: "practice",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		stats, degraded, err := sess.Controller.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if stats == nil {
			output.Info("No sessions recorded yet. Run 'bt complete' after a session.")
			return nil
		}

		if statsJSON {
			return output.JSON(stats)
		}

		if degraded {
			fmt.Println(output.DegradedBanner())
		}
		fmt.Println(output.FormatStats(stats))
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "emit stats as JSON")
	rootCmd.AddCommand(statsCmd)
}
