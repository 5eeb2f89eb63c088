package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jstrand/bt/internal/models"
	"github.com/jstrand/bt/internal/output"
	"github.com/jstrand/bt/internal/store"
	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:     "reset",
	Short:   "Abandon the current program",
	GroupID: "practice",
	Long: `Abandon the current program so a new one can begin. Free accounts
get three resets per calendar month; premium accounts are unlimited.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		if !resetForce {
			fmt.Print("This discards all progress in the current program. Continue? [y/N] ")
			answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read answer: %w", err)
			}
			if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
				output.Info("Reset cancelled.")
				return nil
			}
		}

		decision, err := sess.Controller.ResetProgram(cmd.Context(), sess.premium(cmd.Context()))
		if err != nil {
			if errors.Is(err, store.ErrQuotaExceeded) {
				output.Error("No resets left this month (limit %d). The quota refills on the 1st.", models.MonthlyResetLimit)
				return err
			}
			return err
		}

		output.Success("Program reset.")
		output.Info("Resets remaining: %s", output.FormatResetsRemaining(decision.Remaining))
		output.Info("Run 'bt begin' to start again.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
