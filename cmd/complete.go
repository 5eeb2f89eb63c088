package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jstrand/bt/internal/content"
	"github.com/jstrand/bt/internal/models"
	"github.com/jstrand/bt/internal/output"
	"github.com/jstrand/bt/internal/store"
	"github.com/spf13/cobra"
)

var completeSession string

var completeCmd = &cobra.Command{
	Use:     "complete [day]",
	Short:   "Record a finished session",
	GroupID: "practice",
	Long: `Record a finished session. With no argument the current day is
completed. On the extended track each day has a morning and an evening
session; pick one with --session.`,
	Args: cobra.MaximumNArgs(1),
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
		prog := snap.Program

		day := prog.CurrentDay
		if len(args) == 1 {
			day, err = strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("day must be a number, got %q", args[0])
			}
		}

		var key models.CompletionKey
		switch prog.TrackKind {
		case models.TrackExtended:
			sessionName := models.Session(completeSession)
			switch sessionName {
			case models.SessionMorning, models.SessionEvening:
			case "":
				return fmt.Errorf("the extended track needs --session morning or --session evening")
			default:
				return fmt.Errorf("unknown session %q (want morning or evening)", completeSession)
			}
			key = models.SessionKey(day, sessionName)
		default:
			if completeSession != "" {
				return fmt.Errorf("--session only applies to the extended track")
			}
			key = models.DayKey(day)
		}

		days, err := content.Days(prog.TrackKind)
		if err != nil {
			return err
		}
		technique := ""
		if day >= 1 && day <= len(days) {
			technique = days[day-1].Technique
		}

		next, err := sess.Controller.CompleteSession(cmd.Context(), key, technique)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrDayLocked):
				output.Error("Day %d is still locked. Run 'bt today' to see what's open.", day)
				return err
			case errors.Is(err, store.ErrOutOfRange):
				output.Error("%v", err)
				return err
			}
			return err
		}

		if next.Program == prog {
			output.Info("Already recorded. Nothing to do.")
			return nil
		}

		if next.Degraded {
			fmt.Println(output.DegradedBanner())
		}
		output.Success("Day %d %s.", day, completionLabel(prog.TrackKind, completeSession))

		if stats, _, err := sess.Controller.Stats(cmd.Context()); err == nil && stats != nil {
			output.Info("Streak: %d days", stats.CurrentStreak)
		}
		return nil
	},
}

func completionLabel(kind models.TrackKind, session string) string {
	if kind == models.TrackExtended {
		return session + " session done"
	}
	return "done"
}

func init() {
	completeCmd.Flags().StringVar(&completeSession, "session", "", "session to record on the extended track (morning|evening)")
	rootCmd.AddCommand(completeCmd)
}
