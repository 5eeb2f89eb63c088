package cmd

import (
	"fmt"
	"time"

	"github.com/jstrand/bt/internal/output"
	"github.com/jstrand/bt/internal/progression"
	"github.com/spf13/cobra"
)

var programJSON bool

var programCmd = &cobra.Command{
	Use:     "program",
	Short:   "Show the full program with per-day status",
	GroupID: "practice",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		snap, err := sess.Controller.Sync(cmd.Context())
		if err != nil {
			return err
		}
		if snap.Program == nil {
			output.Info("No active program. Run 'bt begin' to start one.")
			return nil
		}

		days := progression.ProjectDays(snap.Program, time.Now())

		if programJSON {
			prog := snap.Program.Clone()
			prog.Days = days
			return output.JSON(prog)
		}

		if snap.Degraded {
			fmt.Println(output.DegradedBanner())
		}
		fmt.Println(output.FormatProgram(snap.Program, days))
		return nil
	},
}

func init() {
	programCmd.Flags().BoolVar(&programJSON, "json", false, "emit the program as JSON")
	rootCmd.AddCommand(programCmd)
}
