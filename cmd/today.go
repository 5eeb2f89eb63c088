package cmd

import (
	"fmt"
	"time"

	"github.com/jstrand/bt/internal/output"
	"github.com/jstrand/bt/internal/progression"
	"github.com/spf13/cobra"
)

var todayCmd = &cobra.Command{
	Use:     "today",
	Short:   "Show today's session",
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

		if snap.Degraded {
			fmt.Println(output.DegradedBanner())
		}

		days := progression.ProjectDays(snap.Program, time.Now())
		current := snap.Program.CurrentDay
		if current < 1 || current > len(days) {
			return fmt.Errorf("current day %d out of range", current)
		}

		fmt.Println(output.FormatDayLong(days[current-1], snap.Program.TrackKind))
		if days[current-1].Completed {
			output.Success("Day %d is done. The next day opens tomorrow.", current)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
}
